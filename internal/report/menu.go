package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"popstats/internal/engine"
)

// Menu is the interactive text front end: a main menu for data entry and a
// lettered report submenu backed by a Catalog.
type Menu struct {
	data    *engine.Dataset
	catalog *Catalog
	in      *bufio.Scanner
	out     io.Writer
}

func NewMenu(data *engine.Dataset, catalog *Catalog, in io.Reader, out io.Writer) *Menu {
	return &Menu{data: data, catalog: catalog, in: bufio.NewScanner(in), out: out}
}

// Run loops until the user picks 0 or input ends.
func (m *Menu) Run() error {
	for {
		fmt.Fprintln(m.out, "\n=== POPULATION STATISTICS ===")
		fmt.Fprintln(m.out, "1. Add country")
		fmt.Fprintln(m.out, "2. Add indicator")
		fmt.Fprintln(m.out, "3. Add or update population record")
		fmt.Fprintln(m.out, "4. Reports")
		fmt.Fprintln(m.out, "0. Exit")

		choice, ok := m.ask("\nSelect an option: ")
		if !ok {
			return m.in.Err()
		}
		var more bool
		switch choice {
		case "1":
			more = m.addCountry()
		case "2":
			more = m.addIndicator()
		case "3":
			more = m.upsertPopulation()
		case "4":
			more = m.reports()
		case "0":
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid option.")
			more = true
		}
		if !more {
			return m.in.Err()
		}
	}
}

// reports runs the submenu. It returns false when input ended.
func (m *Menu) reports() bool {
	for {
		fmt.Fprintln(m.out, "\n=== REPORTS ===")
		for _, r := range m.catalog.Reports() {
			fmt.Fprintf(m.out, "%s. %s\n", r.Key, r.Title)
		}
		fmt.Fprintln(m.out, "Z. Back to main menu")

		choice, ok := m.ask("\nSelect an option (A-Z): ")
		if !ok {
			return false
		}
		choice = strings.ToUpper(choice)
		if choice == "Z" {
			return true
		}
		// each report reads a fresh snapshot so it sees earlier edits
		if err := m.catalog.Run(m.out, choice, m.data.Snapshot()); err != nil {
			fmt.Fprintln(m.out, "Invalid option.")
		}
	}
}

// addCountry, like the other data entry commands, returns false when input
// ends before every field was answered. Nothing is written in that case.
func (m *Menu) addCountry() bool {
	in, ok := m.askAll("Country name: ", "ISO2 code: ", "ISO3 code: ")
	if !ok {
		return false
	}
	if err := m.data.AddCountry(in[0], in[1], in[2]); err != nil {
		m.fail(err)
		return true
	}
	fmt.Fprintf(m.out, "Country %s added.\n", in[0])
	return true
}

func (m *Menu) addIndicator() bool {
	in, ok := m.askAll("Indicator id: ", "Description: ")
	if !ok {
		return false
	}
	if err := m.data.AddIndicator(in[0], in[1]); err != nil {
		m.fail(err)
		return true
	}
	fmt.Fprintf(m.out, "Indicator %s added.\n", in[0])
	return true
}

func (m *Menu) upsertPopulation() bool {
	in, ok := m.askAll("Country name: ", "Indicator id: ", "Year: ")
	if !ok {
		return false
	}
	country, indicator := in[0], in[1]
	year, err := strconv.Atoi(in[2])
	if err != nil {
		fmt.Fprintf(m.out, "Invalid year %q.\n", in[2])
		return true
	}
	rawValue, ok := m.ask("Value: ")
	if !ok {
		return false
	}
	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		fmt.Fprintf(m.out, "Invalid value %q.\n", rawValue)
		return true
	}
	opt, ok := m.askAll("Status (empty for default): ", "Unit (empty for default): ")
	if !ok {
		return false
	}

	created, err := m.data.UpsertPopulation(year, country, indicator, value, opt[0], opt[1])
	if err != nil {
		m.fail(err)
		return true
	}
	if created {
		fmt.Fprintln(m.out, "Record added.")
	} else {
		fmt.Fprintln(m.out, "Record updated.")
	}
	return true
}

func (m *Menu) fail(err error) {
	switch {
	case errors.Is(err, engine.ErrDuplicateCountry), errors.Is(err, engine.ErrDuplicateIndicator),
		errors.Is(err, engine.ErrUnknownCountry), errors.Is(err, engine.ErrUnknownIndicator):
		fmt.Fprintf(m.out, "Error: %v\n", err)
	default:
		fmt.Fprintf(m.out, "Could not save: %v\n", err)
	}
}

func (m *Menu) askAll(prompts ...string) ([]string, bool) {
	answers := make([]string, len(prompts))
	for i, p := range prompts {
		a, ok := m.ask(p)
		if !ok {
			return nil, false
		}
		answers[i] = a
	}
	return answers, true
}

func (m *Menu) ask(prompt string) (string, bool) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}
