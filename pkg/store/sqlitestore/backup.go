package sqlitestore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/store"
)

const backupSchemaVersion = 1

// Backup writes the whole store as a line-oriented text stream. Output is
// produced incrementally; nothing is buffered beyond one line.
func (s *SQLiteStore) Backup(ctx context.Context, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "schema = %d\n", backupSchemaVersion); err != nil {
		return errors.Wrap(err, "failed to write backup header")
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		return err
	}

	for _, c := range categories {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(bw, "\n[category %s]\n", strconv.Quote(c.ID)); err != nil {
			return errors.Wrap(err, "failed to write category")
		}
		// quoting keeps newline-carrying attributes on one line
		if c.Description != "" {
			fmt.Fprintf(bw, "description = %s\n", strconv.Quote(c.Description))
		}
		if c.Unit != "" {
			fmt.Fprintf(bw, "unit = %s\n", strconv.Quote(c.Unit))
		}

		for _, kind := range []store.DetailKind{store.KindMeter, store.KindNote} {
			details, err := s.ListDetails(ctx, c.ID, kind)
			if err != nil {
				return err
			}
			for _, d := range details {
				attributes, err := encodeAttributes(d.Attributes)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(bw, "\n[%s %s]\nattributes = %s\n", kind, strconv.Quote(d.ID), attributes); err != nil {
					return errors.Wrapf(err, "failed to write %s", kind)
				}
			}
		}

		if _, err := fmt.Fprintf(bw, "\n[values]\n"); err != nil {
			return errors.Wrap(err, "failed to write values header")
		}

		err = s.EachValue(ctx, c.ID, store.ListOptions{Limit: -1}, func(v store.Value) error {
			_, err := fmt.Fprintf(bw, "%s %s\n", strconv.FormatFloat(v.Time, 'f', -1, 64), strconv.Quote(v.Value))
			return errors.Wrap(err, "failed to write value")
		})
		if err != nil {
			return err
		}
	}

	return errors.Wrap(bw.Flush(), "failed to flush backup")
}

// Restore ingests a stream produced by Backup, upserting into the store.
// Entries apply one by one; a malformed line aborts the ingest but keeps
// everything applied before it.
func (s *SQLiteStore) Restore(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var category string
	var detailKind store.DetailKind
	var detailID string
	inValues := false

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "schema") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section := strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			inValues = false
			detailKind, detailID = "", ""

			switch {
			case section == "values":
				inValues = true
			case strings.HasPrefix(section, "category "):
				id, err := strconv.Unquote(strings.TrimPrefix(section, "category "))
				if err != nil {
					return errors.Wrapf(err, "line %d: malformed category id", lineNo)
				}
				category = id
				if err := s.PutCategory(ctx, store.Category{ID: id}); err != nil {
					return err
				}
			case strings.HasPrefix(section, "meter "), strings.HasPrefix(section, "note "):
				fields := strings.SplitN(section, " ", 2)
				id, err := strconv.Unquote(fields[1])
				if err != nil {
					return errors.Wrapf(err, "line %d: malformed %s id", lineNo, fields[0])
				}
				detailKind, detailID = store.DetailKind(fields[0]), id
				if err := s.PutDetail(ctx, category, detailKind, store.Detail{ID: id}); err != nil {
					return err
				}
			default:
				return errors.Errorf("line %d: unknown section %q", lineNo, section)
			}
			continue
		}

		if category == "" {
			return errors.Errorf("line %d: content before first category", lineNo)
		}

		if inValues {
			fields := strings.SplitN(line, " ", 2)
			if len(fields) != 2 {
				return errors.Errorf("line %d: malformed value line", lineNo)
			}
			time, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return errors.Wrapf(err, "line %d: malformed value time", lineNo)
			}
			value, err := strconv.Unquote(fields[1])
			if err != nil {
				return errors.Wrapf(err, "line %d: malformed value", lineNo)
			}
			if err := s.WriteValue(ctx, category, value, time); err != nil {
				return err
			}
			continue
		}

		key, val, found := strings.Cut(line, " = ")
		if !found {
			return errors.Errorf("line %d: malformed attribute line", lineNo)
		}

		if detailKind != "" {
			if key != "attributes" {
				return errors.Errorf("line %d: unknown %s attribute %q", lineNo, detailKind, key)
			}
			attributes, err := decodeAttributes(val)
			if err != nil {
				return errors.Wrapf(err, "line %d", lineNo)
			}
			if err := s.PutDetail(ctx, category, detailKind, store.Detail{ID: detailID, Attributes: attributes}); err != nil {
				return err
			}
			continue
		}

		c, err := s.GetCategory(ctx, category)
		if err != nil {
			return err
		}
		if key != "description" && key != "unit" {
			return errors.Errorf("line %d: unknown category attribute %q", lineNo, key)
		}
		unquoted, err := strconv.Unquote(val)
		if err != nil {
			return errors.Wrapf(err, "line %d: malformed %s", lineNo, key)
		}
		if key == "description" {
			c.Description = unquoted
		} else {
			c.Unit = unquoted
		}
		if err := s.PutCategory(ctx, *c); err != nil {
			return err
		}
	}

	return errors.Wrap(scanner.Err(), "failed to read backup stream")
}
