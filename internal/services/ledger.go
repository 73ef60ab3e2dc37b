package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/sheets/v4"

	"brotot_gym/internal/config"
	"brotot_gym/internal/models"
)

const transactionDateFormat = "2006-01-02"

// TransactionLedger is the append-only transaction history, backed by the
// Transactions worksheet. Slice order of ListTransactions mirrors append
// order, which the status deriver relies on for same-day tie-breaks.
type TransactionLedger struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	log           zerolog.Logger
}

func NewTransactionLedger(svc *sheets.Service, cfg config.SheetsConfig, log zerolog.Logger) *TransactionLedger {
	return &TransactionLedger{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.TransactionsSheet,
		log:           log.With().Str("sheet", cfg.TransactionsSheet).Logger(),
	}
}

// ListTransactions returns every ledger row. Rows with an unparseable
// member_id, membership_types_id or transaction_date are dropped, treated
// as if the transaction did not exist.
func (l *TransactionLedger) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	resp, err := l.svc.Spreadsheets.Values.
		Get(l.spreadsheetID, l.sheetName+"!A2:H").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions sheet: %w", err)
	}

	transactions := make([]models.Transaction, 0, len(resp.Values))
	for i, row := range resp.Values {
		tx, ok := parseTransactionRow(row)
		if !ok {
			l.log.Warn().Int("row", i+2).Msg("skipping malformed transaction row")
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// Append adds one transaction row. All cells are written as strings with
// RAW input to keep Google Sheets from reformatting them.
func (l *TransactionLedger) Append(ctx context.Context, tx models.Transaction) error {
	row := []interface{}{
		tx.TransactionID,
		strconv.Itoa(tx.MemberID),
		strconv.Itoa(tx.MembershipTypeID),
		string(tx.Type),
		strconv.FormatFloat(tx.Amount, 'f', -1, 64),
		tx.PaymentMethod,
		tx.TransactionDate.Format(transactionDateFormat),
		tx.Note,
	}
	_, err := l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, l.sheetName+"!A:H", &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func parseTransactionRow(row []interface{}) (models.Transaction, bool) {
	memberID, err := cellInt(row, 1)
	if err != nil {
		return models.Transaction{}, false
	}
	typeID, err := cellInt(row, 2)
	if err != nil {
		return models.Transaction{}, false
	}
	txDate, err := time.Parse(transactionDateFormat, cellString(row, 6))
	if err != nil {
		return models.Transaction{}, false
	}

	amount, _ := strconv.ParseFloat(cellString(row, 4), 64)

	return models.Transaction{
		TransactionID:    cellString(row, 0),
		MemberID:         memberID,
		MembershipTypeID: typeID,
		Type:             models.TransactionType(cellString(row, 3)),
		Amount:           amount,
		PaymentMethod:    cellString(row, 5),
		TransactionDate:  txDate,
		Note:             cellString(row, 7),
	}, true
}
