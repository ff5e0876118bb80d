package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"mix-lab/domain"
	"mix-lab/domain/event"
	"mix-lab/projection"
	"mix-lab/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/jung-kurt/gofpdf"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	mode := flag.String("mode", "dump", "dump | seed | export | history")
	prefix := flag.String("prefix", "sess:", "Prefix to scan in dump mode")
	sessionID := flag.String("session", "", "Session id for export/history mode (export takes the newest when empty)")
	out := flag.String("out", "match_sheet.pdf", "Output file for export mode")
	flag.Parse()

	var err error
	switch *mode {
	case "dump":
		err = dump(*dbPath, *prefix)
	case "seed":
		err = seed(*dbPath)
	case "export":
		err = export(*dbPath, *sessionID, *out)
	case "history":
		err = history(*dbPath, *sessionID)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// dump prints every row under the prefix, decoded by key family.
func dump(dbPath, prefix string) error {
	db, err := openReadOnly(dbPath)
	if err != nil {
		return fmt.Errorf("error while opening Badger: %w", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Namespace", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				table.Append(toRow(string(item.Key()), v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func toRow(key string, val []byte) []string {
	switch {
	case strings.HasPrefix(key, "sess:"):
		return sessionRow(key, val)
	case strings.HasPrefix(key, "link:"):
		return linkRow(key, val)
	case strings.HasPrefix(key, "evt:"):
		return journalRow(key, val)
	default:
		return []string{key, "RAW", "", "", "", fmt.Sprintf("Size: %d bytes", len(val))}
	}
}

func sessionRow(key string, val []byte) []string {
	var record repositories.SessionRecord
	if err := json.Unmarshal(val, &record); err != nil {
		return []string{key, "SESSION", "", "", "", "Error: decode failed"}
	}
	detail := fmt.Sprintf("%d/%d players", len(record.Roster), record.Capacity)
	if len(record.TeamA) > 0 {
		detail += fmt.Sprintf(", teams %dv%d", len(record.TeamA), len(record.TeamB))
	}
	return []string{
		key,
		record.State,
		time.Unix(0, record.CreatedAt).Format("15:04:05"),
		shorten(record.SessionID),
		record.GuildID + ":" + record.ChannelID,
		detail,
	}
}

func linkRow(key string, val []byte) []string {
	// Mirrors the stored link layout without exporting it from the repository.
	var record struct {
		Nickname string `json:"nickname"`
		LinkedAt int64  `json:"linked_at"`
	}
	if err := json.Unmarshal(val, &record); err != nil {
		return []string{key, "LINK", "", "", "", "Error: decode failed"}
	}
	return []string{
		key,
		"LINK",
		time.Unix(record.LinkedAt, 0).Format("15:04:05"),
		strings.TrimPrefix(key, "link:"),
		"identity",
		"faceit " + record.Nickname,
	}
}

func journalRow(key string, val []byte) []string {
	var entry repositories.JournalEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return []string{key, "EVENT", "", "", "", "Error: decode failed"}
	}
	return []string{
		key,
		entry.Type,
		time.Unix(0, entry.CreatedAt).Format("15:04:05"),
		shorten(entry.EventID),
		shorten(entry.SessionID),
		string(entry.Payload),
	}
}

// seed plants a linked, balanced demo session so the inspector and the
// viewer have something to show without a running master.
func seed(dbPath string) error {
	db, err := badger.Open(badger.DefaultOptions(dbPath).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return err
	}
	defer db.Close()

	logger := logs.GetLoggerFromLevel(slog.LevelWarn)
	sessions := repositories.NewSessionRepository(db, logger)
	links := repositories.NewLinkRepository(db)
	journal := repositories.NewEventJournal(db, logger)

	players := []domain.Participant{
		{ID: "u1", Name: "alice", Nickname: "ali_cs", Rating: 2100},
		{ID: "u2", Name: "bob", Nickname: "bobby", Rating: 1950},
		{ID: "u3", Name: "carol", Nickname: "carolina", Rating: 1800},
		{ID: "u4", Name: "dave", Nickname: "d4ve", Rating: 1700},
	}

	now := time.Now()
	for _, p := range players {
		err = links.Set(domain.Link{UserID: p.ID, Nickname: p.Nickname, LinkedAt: now})
		if err != nil {
			return err
		}
	}

	session := domain.NewSession(domain.Location{GuildID: "demo", ChannelID: "mix", MessageID: "seed"}, len(players), now)
	session.Roster = players
	session.TeamA, session.TeamB, err = domain.Balance(session.Roster, session.Capacity)
	if err != nil {
		return err
	}
	session.State = domain.BALANCED
	if err = sessions.Save(session); err != nil {
		return err
	}

	events := []event.Event{
		event.New(event.SessionOpenedType, session.ID, nil),
	}
	for i, p := range players {
		events = append(events, event.New(event.ParticipantJoinedType, session.ID, event.RosterChanged{
			UserID:   p.ID,
			Count:    i + 1,
			Capacity: session.Capacity,
		}))
	}
	statsA, statsB := session.TeamA.Stats(), session.TeamB.Stats()
	events = append(events, event.New(event.TeamsFormedType, session.ID, event.TeamsFormed{
		TotalA: statsA.Total,
		TotalB: statsB.Total,
		Gap:    domain.RatingGap(session.TeamA, session.TeamB),
	}))
	if err = journal.Append(events); err != nil {
		return err
	}

	fmt.Printf("✅ Seeded session %s with %d linked players\n", shorten(session.ID), len(players))
	return nil
}

// export writes a printable match sheet for one stored session.
func export(dbPath, sessionID, outPath string) error {
	db, err := openReadOnly(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store := repositories.NewSessionRepository(db, logs.GetLoggerFromLevel(slog.LevelWarn))
	sessions, err := store.List()
	if err != nil {
		return err
	}

	var picked *domain.Session
	for i := range sessions {
		s := &sessions[i]
		if sessionID != "" {
			if s.ID == sessionID {
				picked = s
				break
			}
			continue
		}
		if picked == nil || s.CreatedAt.After(picked.CreatedAt) {
			picked = s
		}
	}
	if picked == nil {
		return fmt.Errorf("no stored session matches")
	}
	if len(picked.TeamA) == 0 {
		return fmt.Errorf("session %s has no teams yet", shorten(picked.ID))
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(40, 12, "Match sheet")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Session %s, opened %s at %s",
		shorten(picked.ID),
		picked.Location.ChannelKey(),
		picked.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(12)

	writeTeam(pdf, "Team A", picked.TeamA)
	writeTeam(pdf, "Team B", picked.TeamB)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Rating gap: %d", domain.RatingGap(picked.TeamA, picked.TeamB)))

	if err = pdf.OutputFileAndClose(outPath); err != nil {
		return err
	}
	fmt.Printf("📄 Match sheet written to %s\n", outPath)
	return nil
}

// history prints the journal of one session as a folded timeline.
// The journal outlives the snapshot, so finalized sessions still have
// a story to tell here.
func history(dbPath, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("history mode needs -session")
	}

	db, err := openReadOnly(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	journal := repositories.NewEventJournal(db, logs.GetLoggerFromLevel(slog.LevelWarn))
	entries, err := journal.History(sessionID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no recorded events for session %s", shorten(sessionID))
	}

	timeline := projection.NewTimeline(sessionID)
	for _, entry := range entries {
		timeline.Consume(entry)
	}

	fmt.Printf("Session %s, %d events\n\n", shorten(sessionID), len(timeline.Moments))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Event", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, moment := range timeline.Moments {
		table.Append([]string{moment.At.Format("15:04:05"), moment.Label, moment.Detail})
	}
	table.Render()
	return nil
}

func writeTeam(pdf *gofpdf.Fpdf, name string, team domain.Team) {
	stats := team.Stats()
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("%s (total %d, avg %.1f)", name, stats.Total, stats.Average))
	pdf.Ln(9)

	pdf.SetFont("Arial", "", 11)
	for _, p := range team {
		pdf.Cell(0, 6, fmt.Sprintf("  %s / %s : %d", p.Name, p.Nickname, p.Rating))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}

func openReadOnly(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
