package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/auction-bin-tracker/internal/model"
)

// ErrMalformedRecord is returned when a history file or one of its rows
// fails parsing or type validation.  The error always wraps enough context
// (row number, field) for the operator to find the bad line.
var ErrMalformedRecord = errors.New("malformed record")

// truthy is the set of accepted giveaway markers, compared case-insensitively.
var truthy = map[string]bool{"yes": true, "true": true, "1": true}

// ReadBidderHistory parses a bidder-history CSV into rows, in file order.
// The header must contain every expected column (extra columns are
// ignored).  Every row is validated here so callers can treat the returned
// slice as fully typed; nothing is grouped or applied to a session yet.
func ReadBidderHistory(r io.Reader) ([]model.HistoryRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // column count is checked via the header map

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header: %v", ErrMalformedRecord, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range bidderColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q (expected %s)",
				ErrMalformedRecord, name, strings.Join(bidderColumns, ","))
		}
	}

	var rows []model.HistoryRow
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedRecord, line, err)
		}
		row, err := parseRow(rec, col)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedRecord, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string, col map[string]int) (model.HistoryRow, error) {
	field := func(name string) string {
		i := col[name]
		if i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	username := strings.TrimSpace(field("username"))
	if username == "" {
		return model.HistoryRow{}, errors.New("username is empty")
	}
	bin, err := strconv.Atoi(strings.TrimSpace(field("bin")))
	if err != nil || bin <= 0 {
		return model.HistoryRow{}, fmt.Errorf("bad bin %q", field("bin"))
	}
	qty, err := strconv.Atoi(strings.TrimSpace(field("qty")))
	if err != nil || qty <= 0 {
		return model.HistoryRow{}, fmt.Errorf("bad qty %q", field("qty"))
	}
	giveaway := truthy[strings.ToLower(strings.TrimSpace(field("giveaway")))]
	giveawayNum := 0
	if raw := strings.TrimSpace(field("giveaway_num")); raw != "" {
		giveawayNum, err = strconv.Atoi(raw)
		if err != nil || giveawayNum < 0 {
			return model.HistoryRow{}, fmt.Errorf("bad giveaway_num %q", raw)
		}
	}
	if !giveaway {
		giveawayNum = 0
	}
	ts, err := time.Parse(model.TimestampLayout, strings.TrimSpace(field("timestamp")))
	if err != nil {
		return model.HistoryRow{}, fmt.Errorf("bad timestamp %q", field("timestamp"))
	}
	return model.HistoryRow{
		Username:    username,
		Bin:         bin,
		Qty:         qty,
		Weight:      field("weight"),
		Giveaway:    giveaway,
		GiveawayNum: giveawayNum,
		Timestamp:   ts,
	}, nil
}
