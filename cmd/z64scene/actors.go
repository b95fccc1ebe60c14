package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/Faultbox/z64scene/internal/logger"
)

func cmdActors(args []string) {
	cfg, rest := setup(args)
	defer logger.Sync()

	pattern := ""
	if len(rest) > 0 {
		pattern = strings.ToLower(rest[0])
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Key", "ID", "Object", "Notes"})

	count := 0
	for _, a := range loadActors(cfg).Actors() {
		row := []string{a.Key, a.ID, a.ObjectID, a.Notes}
		if pattern != "" && !strings.Contains(strings.ToLower(strings.Join(row, " ")), pattern) {
			continue
		}
		table.Append(row)
		count++
	}

	if count == 0 {
		fmt.Fprintln(os.Stderr, "No actors found")
		return
	}
	table.Render()
	fmt.Fprintf(os.Stderr, "\n(%d actors)\n", count)
}
