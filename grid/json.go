package grid

import (
	"encoding/json"
	"fmt"

	"github.com/perimeterx/marshmallow"
)

// UnmarshalJSON keeps keys other than colormap, scale_min and scale_max in Extra.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	extra, err := marshmallow.Unmarshal(data, a, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}
	if len(extra) > 0 {
		a.Extra = extra
	}
	return nil
}

type fieldJSON struct {
	Name   string     `json:"name"`
	Dims   []Dim      `json:"dims"`
	Values []*float64 `json:"values"`
	Attrs  Attributes `json:"attrs"`
}

// UnmarshalJSON decodes a field document:
//
//	{"name": ..., "dims": [{"name": ..., "coords": [...]}], "values": [...], "attrs": {...}}
//
// Values are flattened row-major, with null for missing values.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	values := make([]float64, len(raw.Values))
	for i, v := range raw.Values {
		if v == nil {
			values[i] = NoData
		} else {
			values[i] = *v
		}
	}
	decoded, err := New(raw.Name, raw.Dims, values, raw.Attrs)
	if err != nil {
		return fmt.Errorf("decoding field: %w", err)
	}
	*f = *decoded
	return nil
}
