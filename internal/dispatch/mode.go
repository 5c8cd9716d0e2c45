package dispatch

import (
	"strings"

	"github.com/leengari/sheetsql/internal/domain/errors"
)

// Mode selects which backing store handles a statement
type Mode string

const (
	ModeRelational Mode = "relational"
	ModeTabular    Mode = "tabular"
	ModeBoth       Mode = "both"
)

var modeAliases = map[string]Mode{
	"relational": ModeRelational,
	"mysql":      ModeRelational,
	"sqlite":     ModeRelational,
	"sql":        ModeRelational,
	"tabular":    ModeTabular,
	"sheets":     ModeTabular,
	"sheet":      ModeTabular,
	"gsheet":     ModeTabular,
	"local":      ModeTabular,
	"both":       ModeBoth,

	"google sheets":       ModeTabular,
	"both (mysql+sheets)": ModeBoth,
}

// ParseMode maps a configured source name to a Mode. Matching ignores case
// and surrounding space.
func ParseMode(s string) (Mode, error) {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", errors.NewInvalidSourceMode(s)
}

func (m Mode) String() string {
	return string(m)
}
