package format

import (
	"encoding/json"

	"github.com/phobologic/docjs/internal/model"
)

// JSON renders entities as an indented JSON array. Tag errors and sort keys
// are internal to a run and are left out.
type JSON struct{}

func (JSON) Format(entities []model.Entity, _ Options) (string, error) {
	out := make([]model.Entity, len(entities))
	for i, e := range entities {
		e.Errors = nil
		e.Context.SortKey = ""
		out[i] = e
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
