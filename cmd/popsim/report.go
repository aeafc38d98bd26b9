package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/talgya/populace/internal/engine"
	"github.com/talgya/populace/internal/persistence"
)

// tally counts events by kind for the report.
type tally struct {
	mu     sync.Mutex
	counts map[engine.EventKind]int
	worlds []string
}

func (t *tally) Publish(e engine.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[e.Kind]++
	if e.Kind == engine.EventWorldEvent {
		t.worlds = append(t.worlds, fmt.Sprintf("%s: %s", engine.SimTime(e.Tick), e.Description))
	}
	if e.Kind == engine.EventDied || e.Kind == engine.EventBorn || e.Kind == engine.EventMarried {
		return
	}
	slogEvent(e)
}

// forward passes events to a sink attached after the game was built.
type forward struct {
	to engine.Sink
}

func (f *forward) Publish(e engine.Event) {
	if f.to != nil {
		f.to.Publish(e)
	}
}

// historyWriter copies new year records into the chronicle.
type historyWriter struct {
	chronicle *persistence.Chronicle
	written   int
}

func (h *historyWriter) sync(snap engine.Snapshot) error {
	if h.chronicle == nil {
		h.written = len(snap.History)
		return nil
	}
	for ; h.written < len(snap.History); h.written++ {
		if err := h.chronicle.RecordYear(snap.History[h.written]); err != nil {
			return err
		}
	}
	return nil
}

func slogEvent(e engine.Event) {
	if e.Kind == engine.EventShortage {
		slog.Debug("event", "tick", e.Tick, "category", e.Category, "description", e.Description)
		return
	}
	slog.Info("event", "tick", e.Tick, "category", e.Category, "description", e.Description)
}

func writeReport(w io.Writer, snap engine.Snapshot, t *tally) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(w, "\n== populace report: %s ==\n", snap.Time)
	fmt.Fprintf(w, "years simulated   %s\n", humanize.Comma(int64(len(snap.History))))
	fmt.Fprintf(w, "living            %s\n", humanize.Comma(int64(len(snap.Living))))
	fmt.Fprintf(w, "births / deaths   %s / %s\n", humanize.Comma(int64(snap.TotalBirths)), humanize.Comma(int64(snap.TotalDeaths)))
	fmt.Fprintf(w, "marriages         %s\n", humanize.Comma(int64(t.counts[engine.EventMarried])))
	fmt.Fprintf(w, "avg age           %.1f\n", snap.Averages.Age)
	fmt.Fprintf(w, "avg health        %.1f\n", snap.Averages.Health)
	fmt.Fprintf(w, "avg education     %.2f\n", snap.Averages.Education)

	st := snap.Resources.Stock
	fmt.Fprintf(w, "\nresources\n")
	fmt.Fprintf(w, "  food       %s\n", humanize.Comma(int64(math.Round(st.Food))))
	fmt.Fprintf(w, "  housing    %.1f\n", st.Housing)
	fmt.Fprintf(w, "  medicine   %.1f\n", st.Medicine)
	fmt.Fprintf(w, "  education  %.1f\n", st.Education)
	fmt.Fprintf(w, "  money      %s\n", humanize.Comma(int64(math.Round(st.Money))))

	if len(snap.ActivePolicies) > 0 {
		fmt.Fprintf(w, "\nactive policies   %v\n", snap.ActivePolicies)
	}

	if len(snap.Achievements) > 0 {
		fmt.Fprintf(w, "\nachievements\n")
		for _, a := range snap.Achievements {
			fmt.Fprintf(w, "  %-20s %s year\n", a.Name, humanize.Ordinal(engine.YearOf(a.UnlockedTick)))
		}
	}

	if len(t.worlds) > 0 {
		fmt.Fprintf(w, "\nworld events (%d)\n", len(t.worlds))
		for _, line := range t.worlds {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	kinds := make([]string, 0, len(t.counts))
	for k := range t.counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	fmt.Fprintf(w, "\nevents\n")
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-22s %s\n", k, humanize.Comma(int64(t.counts[engine.EventKind(k)])))
	}

	fmt.Fprintln(w)
	switch {
	case snap.Ending != nil:
		e := snap.Ending
		fmt.Fprintf(w, "ENDING: %s", e.Title)
		if e.Grade != "" {
			fmt.Fprintf(w, " (grade %s)", e.Grade)
		}
		fmt.Fprintf(w, "\n%s\nscore %.1f = population %.1f + economy %.1f + happiness %.1f + health %.1f + education %.1f\n",
			e.Narrative, e.Score.Total, e.Score.Population, e.Score.Economy, e.Score.Happiness, e.Score.Health, e.Score.Education)
	case snap.Provisional != nil:
		p := snap.Provisional
		fmt.Fprintf(w, "IN PROGRESS: %s (provisional score %.1f)\n%s\n", p.Title, p.Score.Total, p.Narrative)
	default:
		fmt.Fprintf(w, "IN PROGRESS: no outcome yet\n")
	}
}
