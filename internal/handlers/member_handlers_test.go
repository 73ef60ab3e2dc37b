package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brotot_gym/internal/config"
	"brotot_gym/internal/models"
)

type fakeDirectory struct {
	members  []models.Member
	appended []models.Member
	updates  map[int]map[string]string
}

func (f *fakeDirectory) ListMembers(context.Context) ([]models.Member, error) {
	return f.members, nil
}

func (f *fakeDirectory) Append(_ context.Context, member models.Member) (int, error) {
	f.appended = append(f.appended, member)
	return len(f.members) + len(f.appended), nil
}

func (f *fakeDirectory) UpdateFields(_ context.Context, memberID int, fields map[string]string) ([]string, error) {
	if f.updates == nil {
		f.updates = make(map[int]map[string]string)
	}
	f.updates[memberID] = fields
	return nil, nil
}

type fakeLedger struct {
	transactions []models.Transaction
	appended     []models.Transaction
}

func (f *fakeLedger) ListTransactions(context.Context) ([]models.Transaction, error) {
	return f.transactions, nil
}

func (f *fakeLedger) Append(_ context.Context, tx models.Transaction) error {
	f.appended = append(f.appended, tx)
	return nil
}

func testDate(value string) time.Time {
	t, _ := time.Parse("2006-01-02", value)
	return t
}

func TestBuildMemberViews(t *testing.T) {
	expiration := testDate("2024-02-07")
	daysLeft := 28
	statuses := []models.MemberStatus{
		{
			Member:     models.Member{MemberID: 1, NickName: "Adi", PhoneNumber: "081234567890"},
			Expiration: &expiration,
			DaysLeft:   &daysLeft,
			Tag:        models.StatusGreen,
		},
		{
			Member: models.Member{MemberID: 2, NickName: "Budi", PhoneNumber: "0812"},
			Tag:    models.StatusRed,
		},
	}

	views := buildMemberViews(statuses)

	require.Len(t, views, 2)
	assert.True(t, views[0].PhoneValid)
	assert.Contains(t, views[0].WhatsAppURL, "https://wa.me/6281234567890")
	assert.Equal(t, "2024-02-07", views[0].ExpirationText)
	assert.Equal(t, "28", views[0].DaysLeftText)

	assert.False(t, views[1].PhoneValid)
	assert.Empty(t, views[1].WhatsAppURL)
	assert.Equal(t, "No transactions found", views[1].ExpirationText)
}

func TestFilterMemberViews(t *testing.T) {
	views := []memberView{
		{MemberStatus: models.MemberStatus{Member: models.Member{NickName: "Adi", FullName: "Adi Wirawan"}, Tag: models.StatusGreen}},
		{MemberStatus: models.MemberStatus{Member: models.Member{NickName: "Budi", FullName: "Budi Santoso"}, Tag: models.StatusRed}},
		{MemberStatus: models.MemberStatus{Member: models.Member{NickName: "Citra", FullName: "Citra Dewi"}, Tag: models.StatusYellow}},
	}

	assert.Len(t, filterMemberViews(views, "", ""), 3)
	assert.Len(t, filterMemberViews(views, "All", ""), 3)

	reds := filterMemberViews(views, "Red", "")
	require.Len(t, reds, 1)
	assert.Equal(t, "Budi", reds[0].Member.NickName)

	// Search is case-insensitive and matches nickname or full name.
	byNick := filterMemberViews(views, "", "adi")
	require.Len(t, byNick, 1)
	assert.Equal(t, "Adi", byNick[0].Member.NickName)

	byFull := filterMemberViews(views, "", "santoso")
	require.Len(t, byFull, 1)
	assert.Equal(t, "Budi", byFull[0].Member.NickName)

	both := filterMemberViews(views, "Yellow", "citra")
	require.Len(t, both, 1)
	assert.Equal(t, "Citra", both[0].Member.NickName)

	assert.Empty(t, filterMemberViews(views, "Green", "budi"))
}

func newRenewContext(t *testing.T, memberID string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/members/"+memberID+"/renew", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/members/:id/renew")
	c.SetParamNames("id")
	c.SetParamValues(memberID)
	return c, rec
}

func TestRenewMember(t *testing.T) {
	directory := &fakeDirectory{members: []models.Member{{MemberID: 5, NickName: "Adi"}}}
	ledger := &fakeLedger{}

	h := NewMemberHandler(directory, ledger, nil, config.RedisConfig{}, zerolog.Nop())
	h.now = func() time.Time { return testDate("2024-01-10") }

	form := url.Values{}
	form.Set("amount", "80")
	form.Set("payment_method", "Trf/Qris")
	form.Set("transaction_date", "2024-01-10")
	form.Set("note", "renewed at desk")

	c, rec := newRenewContext(t, "5", form)
	require.NoError(t, h.RenewMember(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, ledger.appended, 1)

	tx := ledger.appended[0]
	assert.Equal(t, "20240110-5", tx.TransactionID)
	assert.Equal(t, 5, tx.MemberID)
	assert.Equal(t, models.TransactionTypeRenewal, tx.Type)
	assert.Equal(t, 80.0, tx.Amount)
	assert.Equal(t, "e-money", tx.PaymentMethod)
	assert.Equal(t, "renewed at desk", tx.Note)
}

func TestRenewMemberSameDayGetsSuffixedID(t *testing.T) {
	directory := &fakeDirectory{members: []models.Member{{MemberID: 5}}}
	ledger := &fakeLedger{transactions: []models.Transaction{{TransactionID: "20240110-5"}}}

	h := NewMemberHandler(directory, ledger, nil, config.RedisConfig{}, zerolog.Nop())
	h.now = func() time.Time { return testDate("2024-01-10") }

	form := url.Values{}
	form.Set("amount", "80")
	form.Set("payment_method", "Cash")

	c, _ := newRenewContext(t, "5", form)
	require.NoError(t, h.RenewMember(c))

	require.Len(t, ledger.appended, 1)
	assert.Equal(t, "20240110-5-2", ledger.appended[0].TransactionID)
}

func TestRenewMemberNotFound(t *testing.T) {
	directory := &fakeDirectory{}
	ledger := &fakeLedger{}

	h := NewMemberHandler(directory, ledger, nil, config.RedisConfig{}, zerolog.Nop())

	form := url.Values{}
	form.Set("amount", "80")

	c, _ := newRenewContext(t, "99", form)
	err := h.RenewMember(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
	assert.Empty(t, ledger.appended)
}

func TestRenewMemberBadAmount(t *testing.T) {
	directory := &fakeDirectory{members: []models.Member{{MemberID: 5}}}
	ledger := &fakeLedger{}

	h := NewMemberHandler(directory, ledger, nil, config.RedisConfig{}, zerolog.Nop())

	form := url.Values{}
	form.Set("amount", "not-a-number")

	c, _ := newRenewContext(t, "5", form)
	err := h.RenewMember(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Empty(t, ledger.appended)
}
