package services

import (
	"context"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// InitSheets initializes the Google Sheets client from a service account
// credentials file.
func InitSheets(ctx context.Context, credPath string) (*sheets.Service, error) {
	return sheets.NewService(ctx,
		option.WithCredentialsFile(credPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
}
