package mutator

import (
	"fmt"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// timeAdvance moves the calendar. A bare tag advances one hour.
func (m *Mutator) timeAdvance(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	hours := world.HoursIn(cmd.Args.Int("years"), cmd.Args.Int("days"), cmd.Args.Int("hours"))
	if hours < 0 {
		return nil, nil, command.Skip(command.ErrRejected, "Time cannot run backwards.")
	}
	if hours == 0 {
		hours = 1
	}

	before := ws.Calendar
	ws.Calendar = ws.Calendar.Advance(hours)
	notes := []string{fmt.Sprintf("Time passes: it is now %s.", ws.Calendar)}
	if ws.Calendar.Year > before.Year {
		notes = append(notes, fmt.Sprintf("A new year begins: year %d.", ws.Calendar.Year))
	}
	return ws, notes, nil
}
