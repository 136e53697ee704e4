package events

import (
	"sync"
	"time"
	_ "time/tzdata"
)

const DefaultZone = "Asia/Ho_Chi_Minh"

// Vietnam has no daylight saving, so a fixed offset is a faithful fallback
// when the tz database is unavailable.
var fixedICT = time.FixedZone("ICT", 7*60*60)

var (
	zoneMu sync.RWMutex
	zone   = loadZone(DefaultZone)
)

func loadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fixedICT
	}
	return loc
}

// Location is the zone every wall-clock computation is anchored to.
func Location() *time.Location {
	zoneMu.RLock()
	defer zoneMu.RUnlock()
	return zone
}

// SetLocation changes the anchoring zone; called once at startup.
func SetLocation(name string) {
	zoneMu.Lock()
	zone = loadZone(name)
	zoneMu.Unlock()
}
