// Package console implements the interactive stdin menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/i474232898/meteo-station/internal/scheduler"
	"github.com/i474232898/meteo-station/internal/station"
	"github.com/i474232898/meteo-station/internal/store"
)

// Collector is the part of station.Service the menu drives.
type Collector interface {
	Collect(ctx context.Context, source string) station.Reading
	Latest(ctx context.Context) (station.Reading, error)
	DefaultURL() string
}

// Schedule is the part of scheduler.Scheduler the menu drives.
type Schedule interface {
	Start() scheduler.Status
	Stop() scheduler.Status
	Interval() time.Duration
}

// Menu reads choices line by line and writes human-readable output.
type Menu struct {
	in       *bufio.Scanner
	out      io.Writer
	service  Collector
	schedule Schedule
}

func NewMenu(in io.Reader, out io.Writer, service Collector, schedule Schedule) *Menu {
	return &Menu{
		in:       bufio.NewScanner(in),
		out:      out,
		service:  service,
		schedule: schedule,
	}
}

// Run loops until the user exits, input ends or ctx is done. Choosing exit
// stops the schedule.
func (m *Menu) Run(ctx context.Context) error {
	m.printf("Welcome to meteo-station!\n")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		choice, ok := m.readLine()
		if !ok {
			return m.in.Err()
		}

		switch choice {
		case "1":
			m.collect(ctx, m.service.DefaultURL())
		case "2":
			m.printf("Enter station URL: ")
			u, ok := m.readLine()
			if !ok {
				return m.in.Err()
			}
			if u == "" {
				m.printf("URL must not be empty.\n")
				continue
			}
			m.collect(ctx, u)
		case "3":
			m.showLatest(ctx)
		case "4":
			m.printf("%s\n", m.describe(m.schedule.Start()))
		case "5":
			m.printf("%s\n", m.describe(m.schedule.Stop()))
		case "6":
			m.printf("%s\n", m.describe(m.schedule.Stop()))
			m.printf("Shutting down.\n")
			return nil
		default:
			m.printf("Invalid choice. Try again.\n")
		}
	}
}

func (m *Menu) printMenu() {
	m.printf("\n--- meteo-station ---\n")
	m.printf("1. Fetch data (default URL)\n")
	m.printf("2. Fetch data (custom URL)\n")
	m.printf("3. Show last reading\n")
	m.printf("4. Start schedule\n")
	m.printf("5. Stop schedule\n")
	m.printf("6. Exit\n")
	m.printf("Choice: ")
}

func (m *Menu) collect(ctx context.Context, source string) {
	m.printf("Fetching data from %s...\n", source)
	r := m.service.Collect(ctx, source)

	m.printf("Reading saved. Download time: %s, station available: %t\n", formatTime(r.DownloadTime), r.IsAvailable)
	if !r.IsAvailable {
		m.printf("The station was unreachable or returned an unusable document.\n")
		return
	}
	m.printf("Data (JSON): %s\n", r.Payload)
}

func (m *Menu) showLatest(ctx context.Context) {
	r, err := m.service.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		m.printf("No readings stored yet.\n")
		return
	}
	if err != nil {
		m.printf("Failed to load the last reading: %v\n", err)
		return
	}

	m.printf("\n--- Last reading ---\n")
	m.printf("ID: %d\n", r.ID)
	m.printf("Download time: %s\n", formatTime(r.DownloadTime))
	m.printf("Station available: %t\n", r.IsAvailable)
	if r.IsAvailable && len(r.Payload) > 0 {
		m.printf("Data (JSON): %s\n", r.Payload)
	} else {
		m.printf("No data (station was offline or the document was unusable).\n")
	}
}

func (m *Menu) describe(s scheduler.Status) string {
	switch s {
	case scheduler.StatusStarted:
		return fmt.Sprintf("Schedule started. Data will be fetched every %s.", m.schedule.Interval())
	case scheduler.StatusRestarted:
		return "Schedule restarted."
	case scheduler.StatusAlreadyRunning:
		return "Schedule is already running."
	case scheduler.StatusStopped:
		return "Schedule stopped."
	case scheduler.StatusNotRunning:
		return "Schedule is not running."
	default:
		return string(s)
	}
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func formatTime(t time.Time) string {
	return t.Local().Format(time.DateTime)
}
