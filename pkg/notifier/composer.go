package notifier

import (
	"fmt"
	"strings"

	"github.com/fleettrack/notifier/pkg/fleet"
)

// timeLayout renders event timestamps in message bodies.
const timeLayout = "2006-01-02 15:04:05 MST"

// Compose renders the two event buckets into a channel-agnostic subject and
// body. It performs no I/O and is deterministic given its inputs.
//
// A single offline event yields one sentence; several yield a header line
// followed by one indented line per device. A blank line separates the
// offline and geo-fence sections when both are present. Each geo-fence event
// yields one line of its own.
func Compose(subjectTag string, offline, geoFence []fleet.DeviceEvent) (subject, body string) {
	var b strings.Builder

	if appendOfflineText(&b, offline) && len(geoFence) > 0 {
		b.WriteString("\n\n")
	}
	appendGeoFenceText(&b, geoFence)

	return subjectTag, b.String()
}

func appendOfflineText(b *strings.Builder, events []fleet.DeviceEvent) bool {
	switch {
	case len(events) == 1:
		e := events[0]
		fmt.Fprintf(b, "Device '%s' went offline at %s", e.Device.Name, e.OccurredAt.Format(timeLayout))
	case len(events) > 1:
		b.WriteString("Following devices went offline:\n")
		for _, e := range events {
			fmt.Fprintf(b, "\n  '%s' (%s) at %s", e.Device.Name, e.Device.UniqueID, e.OccurredAt.Format(timeLayout))
		}
	}
	return len(events) > 0
}

func appendGeoFenceText(b *strings.Builder, events []fleet.DeviceEvent) {
	for _, e := range events {
		verb := "entered"
		if e.Type == fleet.EventGeoFenceExit {
			verb = "exited"
		}
		fenceName := ""
		if e.GeoFence != nil {
			fenceName = e.GeoFence.Name
		}
		fmt.Fprintf(b, "Device '%s' %s geo-fence '%s' at %s\n",
			e.Device.Name, verb, fenceName, e.DisplayTime().Format(timeLayout))
	}
}
