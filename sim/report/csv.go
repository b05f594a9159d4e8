package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/resistance-sim/resistance-sim/sim/trace"
)

// WriteCSV writes one row per recorded day. Drug columns follow the trace's
// configured drug order.
func WriteCSV(w io.Writer, st *trace.SimulationTrace) error {
	cw := csv.NewWriter(w)
	header := []string{"day", "dosed", "active_drugs", "total", "replicating", "persister", "susceptible"}
	for _, d := range st.Config.Drugs {
		header = append(header, "res_"+strings.ToLower(d))
	}
	header = append(header, "mdr", "births", "deaths", "blocked_replication", "entered_persistence", "exited_persistence")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range st.Days {
		row := []string{
			strconv.Itoa(r.Day),
			strconv.FormatBool(r.Dosed),
			strings.Join(r.ActiveDrugs, " "),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Replicating),
			strconv.Itoa(r.Persister),
			strconv.Itoa(r.Susceptible),
		}
		for _, d := range st.Config.Drugs {
			row = append(row, strconv.Itoa(r.ResistantTo(d)))
		}
		row = append(row,
			strconv.Itoa(r.MDR),
			strconv.Itoa(r.Births),
			strconv.Itoa(r.Deaths),
			strconv.Itoa(r.BlockedReplication),
			strconv.Itoa(r.EnteredPersistence),
			strconv.Itoa(r.ExitedPersistence),
		)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row for day %d: %w", r.Day, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
