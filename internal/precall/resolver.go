package precall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"voice-agent-console/internal/customers"
	"voice-agent-console/internal/fixtures"
	"voice-agent-console/internal/openmic"
	"voice-agent-console/pkg/logger"
)

var ErrCustomerNotFound = errors.New("precall: customer data not found")

// FinalAttempt is the platform's last pre-call delivery; a miss no longer blocks the call.
const FinalAttempt = 3

// Attempt accepts the delivery counter as a JSON string or number.
type Attempt int

func (a *Attempt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*a = 1
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*a = Attempt(n)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("attempt: %w", err)
	}
	*a = Attempt(int(f))
	return nil
}

// Call is the "call" object of the pre-call webhook body.
type Call struct {
	FromNumber string  `json:"from_number"`
	ToNumber   string  `json:"to_number"`
	BotID      string  `json:"bot_id"`
	Direction  string  `json:"direction"`
	Attempt    Attempt `json:"attempt"`
}

// UnmarshalJSON takes the text fields from any JSON scalar so a numeric
// phone number or direction does not fail the whole body.
func (c *Call) UnmarshalJSON(b []byte) error {
	var raw struct {
		FromNumber json.RawMessage `json:"from_number"`
		ToNumber   json.RawMessage `json:"to_number"`
		BotID      json.RawMessage `json:"bot_id"`
		Direction  json.RawMessage `json:"direction"`
		Attempt    Attempt         `json:"attempt"`
	}
	raw.Attempt = c.Attempt
	err := json.Unmarshal(b, &raw)
	c.FromNumber = scalarText(raw.FromNumber)
	c.ToNumber = scalarText(raw.ToNumber)
	c.BotID = scalarText(raw.BotID)
	c.Direction = scalarText(raw.Direction)
	c.Attempt = raw.Attempt
	return err
}

func scalarText(raw json.RawMessage) string {
	v := strings.TrimSpace(string(raw))
	if v == "" || v == "null" {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return v
}

type Request struct {
	Call Call `json:"call"`
}

// ParseRequest decodes a webhook body. On failure it still returns whatever
// was decoded, with attempt 1 unless the body said otherwise, so the attempt
// rule can be applied.
func ParseRequest(body []byte) (Request, error) {
	req := Request{Call: Call{Attempt: 1}}
	err := json.Unmarshal(body, &req)
	if req.Call.Attempt == 0 {
		req.Call.Attempt = 1
	}
	if err != nil {
		return req, fmt.Errorf("decode pre-call body: %w", err)
	}
	return req, nil
}

// ParseFailure applies the attempt rule to a body ParseRequest rejected.
func ParseFailure(req Request, cause error) Result {
	return attemptRule(req.Call.Attempt, "", cause)
}

// Result is the resolver outcome. Err is nil on success.
type Result struct {
	Domain    customers.Domain
	Variables map[string]string
	// Degraded is set when an empty map was returned on the final attempt.
	Degraded bool
	Err      error
}

// BotLookup fetches the bot's display name for domain classification.
type BotLookup interface {
	GetAgent(ctx context.Context, uid string) (openmic.Agent, error)
}

// CustomerSource resolves caller records.
type CustomerSource interface {
	Classify(identifier, name string) customers.Domain
	GetUserData(phone string, domain customers.Domain) (fixtures.CustomerRecord, bool)
}

type Resolver struct {
	bots      BotLookup
	customers CustomerSource
}

func NewResolver(bots BotLookup, src CustomerSource) *Resolver {
	return &Resolver{bots: bots, customers: src}
}

// Resolve never panics. Any fault is converted by the attempt rule.
func (r *Resolver) Resolve(ctx context.Context, req Request) (res Result) {
	log := logger.From(ctx).With(
		"bot_id", req.Call.BotID,
		"direction", req.Call.Direction,
		"attempt", int(req.Call.Attempt),
	)

	defer func() {
		if p := recover(); p != nil {
			log.Error("pre-call resolution panicked", "panic", fmt.Sprint(p))
			res = attemptRule(req.Call.Attempt, res.Domain, fmt.Errorf("precall: %v", p))
		}
	}()

	name := ""
	if r.bots != nil && req.Call.BotID != "" {
		bot, err := r.bots.GetAgent(ctx, req.Call.BotID)
		if err != nil {
			log.Warn("bot lookup failed, classifying by id", "err", err)
		} else {
			name = bot.Name
		}
	}

	domain := r.customers.Classify(req.Call.BotID, name)
	log = log.With("domain", domain)

	rec, ok := r.customers.GetUserData(req.Call.FromNumber, domain)
	if !ok {
		log.Info("no customer data for caller", "phone", logger.MaskPhone(req.Call.FromNumber))
		return attemptRule(req.Call.Attempt, domain, ErrCustomerNotFound)
	}

	vars := DynamicVariables(rec)
	log.Debug("resolved dynamic variables", "count", len(vars))
	return Result{Domain: domain, Variables: vars}
}

// attemptRule degrades to an empty map on the final attempt and fails otherwise.
func attemptRule(attempt Attempt, domain customers.Domain, cause error) Result {
	if int(attempt) == FinalAttempt {
		return Result{Domain: domain, Variables: map[string]string{}, Degraded: true}
	}
	return Result{Domain: domain, Err: cause}
}

// DynamicVariables projects a record into the flat map interpolated into the
// agent's script. Optional fields are omitted when empty.
func DynamicVariables(rec fixtures.CustomerRecord) map[string]string {
	vars := map[string]string{
		"customer_name":    rec.Name,
		"customer_email":   rec.Email,
		"customer_phone":   rec.Phone,
		"customer_address": rec.Address,
		"customer_notes":   rec.Notes,
		"customer_id":      rec.ID,
	}
	if rec.Status != "" {
		vars["customer_status"] = rec.Status
	}
	if len(rec.Tags) > 0 {
		vars["customer_tags"] = strings.Join(rec.Tags, ", ")
	}
	if rec.LastContacted != "" {
		vars["last_contacted"] = rec.LastContacted
	}
	if rec.DoctorName != "" {
		vars["doctor_name"] = rec.DoctorName
	}
	return vars
}
