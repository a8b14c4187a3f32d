package loader

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ternarybob/respondo/internal/models"
)

// loadJSON extracts the configured field from each element of the
// configured array path (e.g. messages[].content). Each extracted
// string becomes one TextUnit with its array index as the source
// locator. Elements without the field are skipped; a document where no
// element yields a value is malformed.
func (s *Service) loadJSON(data []byte) ([]models.TextUnit, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON document", models.ErrMalformedInput)
	}

	arr := gjson.GetBytes(data, s.arrayPath)
	if !arr.Exists() || !arr.IsArray() {
		return nil, fmt.Errorf("%w: path %q is not an array", models.ErrMalformedInput, s.arrayPath)
	}

	var units []models.TextUnit
	for i, element := range arr.Array() {
		value := element.Get(s.field)
		if !value.Exists() || value.String() == "" {
			continue
		}
		units = append(units, models.TextUnit{
			Content: value.String(),
			Source:  models.SourceLocator{Kind: models.LocatorRecord, Value: i},
		})
	}

	if len(units) == 0 {
		return nil, fmt.Errorf("%w: path %s[].%s yielded no values", models.ErrMalformedInput, s.arrayPath, s.field)
	}

	s.logger.Debug().
		Int("record_count", len(units)).
		Str("array_path", s.arrayPath).
		Str("field", s.field).
		Msg("Extracted JSON records")

	return units, nil
}
