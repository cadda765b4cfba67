package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"auditserver/criteria"
	apperrors "auditserver/server/errors"
)

// DepositRates runs the booked-versus-published rate check (HDV TC1).
// Fields: detail (repeated), ftp (repeated), paid, sol.
func (h *Handlers) DepositRates(c *gin.Context) {
	detail, err := formFiles(c, "detail")
	if err != nil {
		h.abortError(c, err)
		return
	}
	ftp, err := formFiles(c, "ftp")
	if err != nil {
		h.abortError(c, err)
		return
	}
	paid, err := formFile(c, "paid")
	if err != nil {
		h.abortError(c, err)
		return
	}

	result, err := h.runner.DepositRates(criteria.DepositRatesInput{
		Detail:   detail,
		FTP:      ftp,
		PaidRate: paid,
		SOL:      c.PostForm("sol"),
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	h.logRun(c, "run_hdv_tc1", result.Filename)
	h.respond(c, result)
}

// DepositRanking runs the top-depositor ranking (HDV TC2).
// Fields: term (repeated), demand (repeated), sol.
func (h *Handlers) DepositRanking(c *gin.Context) {
	term, err := formFiles(c, "term")
	if err != nil {
		h.abortError(c, err)
		return
	}
	demand, err := formFiles(c, "demand")
	if err != nil {
		h.abortError(c, err)
		return
	}

	result, err := h.runner.DepositRanking(criteria.DepositRankingInput{
		Term:   term,
		Demand: demand,
		SOL:    c.PostForm("sol"),
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	h.logRun(c, "run_hdv_tc2", result.Filename)
	h.respond(c, result)
}

// DepositWithdrawals runs the early-withdrawal check (HDV TC3).
// Fields: transactions, sol.
func (h *Handlers) DepositWithdrawals(c *gin.Context) {
	transactions, err := formFile(c, "transactions")
	if err != nil {
		h.abortError(c, err)
		return
	}

	result, err := h.runner.DepositWithdrawals(criteria.DepositWithdrawalsInput{
		Transactions: transactions,
		SOL:          c.PostForm("sol"),
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	h.logRun(c, "run_hdv_tc3", result.Filename)
	h.respond(c, result)
}

// Authorization runs the account-authorization checks (DVKH TC1-3).
// Fields: term (repeated), demand (repeated), grants, sms (optional),
// service (optional).
func (h *Handlers) Authorization(c *gin.Context) {
	term, err := formFiles(c, "term")
	if err != nil {
		h.abortError(c, err)
		return
	}
	demand, err := formFiles(c, "demand")
	if err != nil {
		h.abortError(c, err)
		return
	}
	grants, err := formFile(c, "grants")
	if err != nil {
		h.abortError(c, err)
		return
	}
	sms, err := optionalFormFile(c, "sms")
	if err != nil {
		h.abortError(c, err)
		return
	}
	service, err := optionalFormFile(c, "service")
	if err != nil {
		h.abortError(c, err)
		return
	}

	result, err := h.runner.Authorization(criteria.AuthorizationInput{
		Term:    term,
		Demand:  demand,
		Grants:  grants,
		SMS:     sms,
		Service: service,
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	h.logRun(c, "run_dvkh_tc1_3", result.Filename)
	h.respond(c, result)
}

// StaffAccounts runs the staff-benefit account checks (DVKH TC4-5).
// Fields: accounts (repeated), charge_levels, staff, resigned, card_mapping,
// sol.
func (h *Handlers) StaffAccounts(c *gin.Context) {
	accounts, err := formFiles(c, "accounts")
	if err != nil {
		h.abortError(c, err)
		return
	}
	chargeLevels, err := formFile(c, "charge_levels")
	if err != nil {
		h.abortError(c, err)
		return
	}
	staff, err := formFile(c, "staff")
	if err != nil {
		h.abortError(c, err)
		return
	}
	resigned, err := formFile(c, "resigned")
	if err != nil {
		h.abortError(c, err)
		return
	}
	cardMapping, err := formFile(c, "card_mapping")
	if err != nil {
		h.abortError(c, err)
		return
	}

	result, err := h.runner.StaffAccounts(criteria.StaffAccountsInput{
		Accounts:     accounts,
		ChargeLevels: chargeLevels,
		Staff:        staff,
		Resigned:     resigned,
		CardMapping:  cardMapping,
		SOL:          c.PostForm("sol"),
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	h.logRun(c, "run_dvkh_tc4_5", result.Filename)
	h.respond(c, result)
}

// Customs runs the customs-declaration deadline check (TKHQ).
// Fields: declarations, audit_date (YYYY-MM-DD).
func (h *Handlers) Customs(c *gin.Context) {
	declarations, err := formFile(c, "declarations")
	if err != nil {
		h.abortError(c, err)
		return
	}
	rawDate := c.PostForm("audit_date")
	auditDate, err := time.ParseInLocation("2006-01-02", rawDate, time.UTC)
	if err != nil {
		h.abortError(c, apperrors.NewValidationError(
			"audit_date must be in YYYY-MM-DD format", err))
		return
	}

	result, err := h.runner.Customs(criteria.CustomsInput{
		Declarations: declarations,
		AuditDate:    auditDate,
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	h.logRun(c, "run_tkhq", result.Filename)
	h.respond(c, result)
}

// Remittance runs the outward-remittance aggregation (MUC09).
// Fields: transactions.
func (h *Handlers) Remittance(c *gin.Context) {
	transactions, err := formFile(c, "transactions")
	if err != nil {
		h.abortError(c, err)
		return
	}

	result, err := h.runner.Remittance(criteria.RemittanceInput{
		Transactions: transactions,
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	h.logRun(c, "run_muc09", result.Filename)
	h.respond(c, result)
}
