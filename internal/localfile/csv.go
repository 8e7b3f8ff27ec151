package localfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// csvColumns maps accepted header spellings to record fields.
var csvColumns = map[string]string{
	"id":             "id",
	"title":          "title",
	"name":           "title",
	"task name":      "title",
	"description":    "description",
	"status":         "status",
	"priority":       "priority",
	"due_date":       "due_date",
	"due date":       "due_date",
	"due":            "due_date",
	"assigned_to":    "assigned_to",
	"assigned to":    "assigned_to",
	"assignee":       "assigned_to",
	"comments_count": "comments_count",
	"comments":       "comments_count",
}

func parseCSV(data []byte) (*document, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return &document{}, nil
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if field, ok := csvColumns[key]; ok {
			if _, seen := index[field]; !seen {
				index[field] = i
			}
		}
	}
	if _, ok := index["title"]; !ok {
		return nil, fmt.Errorf("csv header has no title column")
	}

	doc := &document{}
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(field string) string {
			i, ok := index[field]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := taskRecord{
			ID:          flexString(get("id")),
			Title:       get("title"),
			Description: get("description"),
			Status:      get("status"),
			Priority:    get("priority"),
			DueDate:     get("due_date"),
			AssignedTo:  flexString(get("assigned_to")),
		}
		if c := get("comments_count"); c != "" {
			n, err := strconv.Atoi(c)
			if err != nil {
				return nil, fmt.Errorf("line %d: comments_count: %w", line, err)
			}
			rec.CommentsCount = n
		}
		doc.Tasks = append(doc.Tasks, rec)
	}

	return doc, nil
}
