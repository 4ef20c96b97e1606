package carriers

import (
	"time"

	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
)

// Config is a stored carrier rate card. The embedded rates.CarrierRate
// is what the quoting engine consumes; the rest is admin bookkeeping.
type Config struct {
	ID        int64             `json:"id"`
	Rate      rates.CarrierRate `json:"rate"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
