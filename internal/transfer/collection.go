package transfer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

// EncodeCollection renders the stored form of the whole plan collection.
func EncodeCollection(plans []models.TravelPlan) ([]byte, error) {
	out := make([]planDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, planToDTO(p))
	}
	return json.Marshal(out)
}

// DecodeCollection parses a stored collection. Any structural or date error
// rejects the whole document.
func DecodeCollection(data []byte, loc *time.Location) ([]models.TravelPlan, error) {
	var raw []planDTO
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}
	plans := make([]models.TravelPlan, 0, len(raw))
	for i, d := range raw {
		p, err := planFromDTO(d, loc)
		if err != nil {
			return nil, fmt.Errorf("plans[%d]: %w", i, err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}
