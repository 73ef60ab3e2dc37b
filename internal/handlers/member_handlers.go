package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"brotot_gym/internal/config"
	"brotot_gym/internal/models"
	"brotot_gym/internal/services"
)

// MemberHandler serves the member list and the renewal write path.
type MemberHandler struct {
	directory MemberDirectory
	ledger    TransactionLedger
	cache     *services.RedisCache
	cacheTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewMemberHandler(directory MemberDirectory, ledger TransactionLedger, cache *services.RedisCache, cfg config.RedisConfig, log zerolog.Logger) *MemberHandler {
	return &MemberHandler{
		directory: directory,
		ledger:    ledger,
		cache:     cache,
		cacheTTL:  cfg.CacheTTL,
		log:       log,
		now:       time.Now,
	}
}

// memberView is one member card on the list page, with display strings
// precomputed for the template.
type memberView struct {
	models.MemberStatus
	PhoneValid     bool
	WhatsAppURL    string
	ExpirationText string
	DaysLeftText   string
}

// ListMembers renders the member list with status tags, optionally filtered
// by tag and by a name search.
func (h *MemberHandler) ListMembers(c echo.Context) error {
	ctx := c.Request().Context()

	members, err := loadMembers(ctx, h.cache, h.cacheTTL, h.directory)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch members")
	}
	transactions, err := loadTransactions(ctx, h.cache, h.cacheTTL, h.ledger)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transactions")
	}

	statuses := models.DeriveStatuses(members, transactions, h.now())
	views := filterMemberViews(buildMemberViews(statuses), c.QueryParam("status"), c.QueryParam("q"))

	return c.Render(http.StatusOK, "members.html", map[string]interface{}{
		"Title":          "Member List",
		"ActiveNav":      "members",
		"Username":       getStringFromContext(c, "username"),
		"Members":        views,
		"Filter":         c.QueryParam("status"),
		"Query":          c.QueryParam("q"),
		"Notice":         c.QueryParam("notice"),
		"StatusFilters":  []string{"All", "Green", "Yellow", "Red"},
		"PaymentOptions": models.PaymentOptions,
		"Today":          h.now().Format("2006-01-02"),
	})
}

// RenewMember appends a renewal transaction for one member.
func (h *MemberHandler) RenewMember(c echo.Context) error {
	ctx := c.Request().Context()

	memberID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid member id")
	}

	members, err := loadMembers(ctx, h.cache, h.cacheTTL, h.directory)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch members")
	}
	if !memberExists(members, memberID) {
		return echo.NewHTTPError(http.StatusNotFound, "Member not found")
	}

	amount, err := strconv.ParseFloat(c.FormValue("amount"), 64)
	if err != nil || amount < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid amount")
	}

	txDate := h.now()
	if value := c.FormValue("transaction_date"); value != "" {
		txDate, err = time.Parse("2006-01-02", value)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid transaction date")
		}
	}

	transactions, err := loadTransactions(ctx, h.cache, h.cacheTTL, h.ledger)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transactions")
	}

	tx := models.Transaction{
		TransactionID:    models.NextTransactionID(transactions, txDate, memberID),
		MemberID:         memberID,
		MembershipTypeID: models.MembershipTypes[0].ID,
		Type:             models.TransactionTypeRenewal,
		Amount:           amount,
		PaymentMethod:    models.PaymentMethodForLabel(c.FormValue("payment_method")),
		TransactionDate:  txDate,
		Note:             c.FormValue("note"),
	}
	if err := h.ledger.Append(ctx, tx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record renewal")
	}

	h.log.Info().Int("member_id", memberID).Str("transaction_id", tx.TransactionID).Msg("membership renewed")
	invalidate(ctx, h.cache, services.CacheKeyTransactions)

	return c.Redirect(http.StatusSeeOther, "/members?notice=Membership+renewed!")
}

func buildMemberViews(statuses []models.MemberStatus) []memberView {
	views := make([]memberView, 0, len(statuses))
	for _, status := range statuses {
		view := memberView{MemberStatus: status}

		if formatted, err := services.FormatPhoneNumber(status.Member.PhoneNumber); err == nil {
			view.PhoneValid = true
			view.WhatsAppURL = services.WhatsAppLink(formatted, services.RenewalReminderMessage)
		}

		if status.Expiration == nil {
			view.ExpirationText = "No transactions found"
		} else {
			view.ExpirationText = status.Expiration.Format("2006-01-02")
			view.DaysLeftText = strconv.Itoa(*status.DaysLeft)
		}

		views = append(views, view)
	}
	return views
}

func filterMemberViews(views []memberView, tag, query string) []memberView {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]memberView, 0, len(views))
	for _, view := range views {
		if tag != "" && tag != "All" && string(view.Tag) != tag {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(view.Member.NickName), query) &&
			!strings.Contains(strings.ToLower(view.Member.FullName), query) {
			continue
		}
		filtered = append(filtered, view)
	}
	return filtered
}

func memberExists(members []models.Member, memberID int) bool {
	for _, m := range members {
		if m.MemberID == memberID {
			return true
		}
	}
	return false
}
