package trips

import (
	"fmt"
	"strconv"
	"time"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/domain"
)

func parseArtifactTime(s string) (time.Time, error) {
	ts, err := time.Parse(domain.TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q", s)
	}
	return ts, nil
}

// formatFloat renders with minimal digits; 2-decimal rounded values stay
// stable (12.5, not 12.50).
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
