package modes

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"ledgerline/internal/core"
)

//go:embed tips.yaml
var tipsYAML []byte

var (
	tipsOnce sync.Once
	tipsData map[core.ModeName][]string
	tipsErr  error
)

func loadTips() (map[core.ModeName][]string, error) {
	tipsOnce.Do(func() {
		var raw map[string][]string
		if err := yaml.Unmarshal(tipsYAML, &raw); err != nil {
			tipsErr = fmt.Errorf("parse tips: %w", err)
			return
		}
		tipsData = make(map[core.ModeName][]string, len(raw))
		for k, v := range raw {
			name, ok := core.ParseModeName(k)
			if !ok {
				tipsErr = fmt.Errorf("parse tips: %w: %s", ErrUnknownMode, k)
				return
			}
			tipsData[name] = v
		}
	})
	return tipsData, tipsErr
}

// Tips returns the advice list for a mode given by identifier or display
// name. Unknown names yield an empty slice.
func Tips(name string) []string {
	mode, ok := core.ParseModeName(name)
	if !ok {
		return []string{}
	}
	tips, err := loadTips()
	if err != nil {
		return []string{}
	}
	return append([]string{}, tips[mode]...)
}
