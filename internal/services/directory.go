package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/sheets/v4"

	"brotot_gym/internal/config"
	"brotot_gym/internal/models"
)

// MemberDirectory is the mutable member profile store, backed by the
// Members worksheet.
type MemberDirectory struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	log           zerolog.Logger
}

func NewMemberDirectory(svc *sheets.Service, cfg config.SheetsConfig, log zerolog.Logger) *MemberDirectory {
	return &MemberDirectory{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.MembersSheet,
		log:           log.With().Str("sheet", cfg.MembersSheet).Logger(),
	}
}

// ListMembers returns every member row. Rows whose member_id does not parse
// as an integer are excluded entirely.
func (d *MemberDirectory) ListMembers(ctx context.Context) ([]models.Member, error) {
	resp, err := d.svc.Spreadsheets.Values.
		Get(d.spreadsheetID, d.sheetName+"!A2:J").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read members sheet: %w", err)
	}

	members := make([]models.Member, 0, len(resp.Values))
	for i, row := range resp.Values {
		member, ok := parseMemberRow(row)
		if !ok {
			d.log.Warn().Int("row", i+2).Msg("skipping member row with unparseable member_id")
			continue
		}
		members = append(members, member)
	}
	return members, nil
}

// Find returns the member with the given id or ErrMemberNotFound.
func (d *MemberDirectory) Find(ctx context.Context, memberID int) (models.Member, error) {
	members, err := d.ListMembers(ctx)
	if err != nil {
		return models.Member{}, err
	}
	for _, m := range members {
		if m.MemberID == memberID {
			return m, nil
		}
	}
	return models.Member{}, models.ErrMemberNotFound
}

// Append adds a new member row and returns the assigned member id, which is
// the current row count plus one.
func (d *MemberDirectory) Append(ctx context.Context, member models.Member) (int, error) {
	resp, err := d.svc.Spreadsheets.Values.
		Get(d.spreadsheetID, d.sheetName+"!A2:A").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read members sheet: %w", err)
	}
	memberID := len(resp.Values) + 1

	row := []interface{}{
		strconv.Itoa(memberID),
		member.NickName,
		member.FullName,
		member.Gender,
		member.BirthDate,
		member.PhoneNumber,
		member.MedicalInfo,
		member.FitnessGoal,
		member.PreferredWorkoutTime,
		member.PhotoURL,
	}
	_, err = d.svc.Spreadsheets.Values.
		Append(d.spreadsheetID, d.sheetName+"!A:J", &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to append member: %w", err)
	}
	return memberID, nil
}

// UpdateFields writes the given field values into the member's row, mapping
// field names to columns through the sheet's header row. Fields absent from
// the header are skipped and returned so the caller can warn about them.
// Returns ErrMemberNotFound when no row carries the id.
func (d *MemberDirectory) UpdateFields(ctx context.Context, memberID int, fields map[string]string) ([]string, error) {
	headerResp, err := d.svc.Spreadsheets.Values.
		Get(d.spreadsheetID, d.sheetName+"!1:1").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read members header: %w", err)
	}
	if len(headerResp.Values) == 0 {
		return nil, fmt.Errorf("members sheet has no header row")
	}
	headers := headerResp.Values[0]

	idResp, err := d.svc.Spreadsheets.Values.
		Get(d.spreadsheetID, d.sheetName+"!A2:A").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read members sheet: %w", err)
	}

	rowNumber := 0
	for i, row := range idResp.Values {
		id, err := cellInt(row, 0)
		if err == nil && id == memberID {
			rowNumber = i + 2
			break
		}
	}
	if rowNumber == 0 {
		return nil, models.ErrMemberNotFound
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var skipped []string
	var data []*sheets.ValueRange
	for _, name := range names {
		col := -1
		for i, h := range headers {
			if fmt.Sprint(h) == name {
				col = i
				break
			}
		}
		if col < 0 {
			skipped = append(skipped, name)
			d.log.Warn().Str("field", name).Msg("field not found in sheet header")
			continue
		}
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", d.sheetName, columnLetter(col), rowNumber),
			Values: [][]interface{}{{fields[name]}},
		})
	}

	if len(data) > 0 {
		_, err = d.svc.Spreadsheets.Values.
			BatchUpdate(d.spreadsheetID, &sheets.BatchUpdateValuesRequest{
				ValueInputOption: "RAW",
				Data:             data,
			}).
			Context(ctx).Do()
		if err != nil {
			return skipped, fmt.Errorf("failed to update member %d: %w", memberID, err)
		}
	}
	return skipped, nil
}

func parseMemberRow(row []interface{}) (models.Member, bool) {
	memberID, err := cellInt(row, 0)
	if err != nil {
		return models.Member{}, false
	}
	return models.Member{
		MemberID:             memberID,
		NickName:             cellString(row, 1),
		FullName:             cellString(row, 2),
		Gender:               cellString(row, 3),
		BirthDate:            cellString(row, 4),
		PhoneNumber:          cellString(row, 5),
		MedicalInfo:          cellString(row, 6),
		FitnessGoal:          cellString(row, 7),
		PreferredWorkoutTime: cellString(row, 8),
		PhotoURL:             cellString(row, 9),
	}, true
}

func cellString(row []interface{}, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[index]))
}

func cellInt(row []interface{}, index int) (int, error) {
	return strconv.Atoi(cellString(row, index))
}

// columnLetter converts a zero-based column index to its A1 notation letter.
func columnLetter(index int) string {
	letters := ""
	for index >= 0 {
		letters = string(rune('A'+index%26)) + letters
		index = index/26 - 1
	}
	return letters
}
