package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/bankflow/internal/domain"
)

// Client communicates with the banking Authority's REST API: authentication,
// account listing, and the two-phase transfer operations.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *Credentials
	log        zerolog.Logger
}

// NewClient creates an Authority client. creds supplies the bearer token for
// authenticated calls and receives the token obtained by Login.
func NewClient(baseURL string, creds *Credentials, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		creds: creds,
		log:   log.With().Str("component", "authority_client").Logger(),
	}
}

// transferPayload is the wire shape of a transfer request. Amounts stay
// string-encoded on the wire.
type transferPayload struct {
	TransferType           string `json:"transferType"`
	FromAccountID          string `json:"fromAccountId"`
	ToAccountID            string `json:"toAccountId,omitempty"`
	RecipientAccountNumber string `json:"recipientAccountNumber,omitempty"`
	Amount                 string `json:"amount"`
	Description            string `json:"description,omitempty"`
	Otp                    string `json:"otp,omitempty"`
}

type initiateResponse struct {
	Otp     string `json:"otp"`
	Message string `json:"message"`
}

type executeResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type accountDoc struct {
	ID            string          `json:"_id"`
	AccountNumber string          `json:"accountNumber"`
	Nickname      string          `json:"accountNickname"`
	Type          string          `json:"accountType"`
	Balance       decimal.Decimal `json:"balance"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// InitiateTransfer requests a passcode be issued for the given intent.
// An idempotency key accompanies each attempt so a retried initiate cannot
// issue two challenges for one submission.
func (c *Client) InitiateTransfer(ctx context.Context, intent *domain.TransferIntent) (*domain.ChallengeResult, error) {
	payload := payloadFromIntent(intent)

	var decoded initiateResponse
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	status, err := c.post(ctx, "/api/transactions/transfer/initiate", payload, headers, &decoded)
	if err != nil {
		if apiErr, ok := err.(*apiError); ok {
			return nil, &domain.ChallengeRejectedError{Message: apiErr.Message, StatusCode: apiErr.StatusCode}
		}
		return nil, &domain.TransportError{Op: "initiate transfer", Err: err}
	}

	c.log.Debug().Int("status", status).Msg("Transfer initiated")
	return &domain.ChallengeResult{Code: decoded.Otp, Message: decoded.Message}, nil
}

// ExecuteTransfer verifies the passcode against the previously initiated
// intent and performs the funds movement.
func (c *Client) ExecuteTransfer(ctx context.Context, intent *domain.TransferIntent, otp string) (*domain.ExecutionResult, error) {
	payload := payloadFromIntent(intent)
	payload.Otp = otp

	var decoded executeResponse
	status, err := c.post(ctx, "/api/transactions/transfer/execute", payload, nil, &decoded)
	if err != nil {
		if apiErr, ok := err.(*apiError); ok {
			return nil, &domain.ExecutionRejectedError{Message: apiErr.Message, StatusCode: apiErr.StatusCode}
		}
		return nil, &domain.TransportError{Op: "execute transfer", Err: err}
	}

	c.log.Debug().Int("status", status).Msg("Transfer executed")
	return &domain.ExecutionResult{Message: decoded.Message}, nil
}

// ListAccounts retrieves all accounts owned by the authenticated user
func (c *Client) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/accounts", nil)
	if err != nil {
		return nil, err
	}

	var docs []accountDoc
	if _, err := c.do(req, &docs); err != nil {
		if apiErr, ok := err.(*apiError); ok {
			return nil, fmt.Errorf("list accounts: %s", apiErr.Message)
		}
		return nil, &domain.TransportError{Op: "list accounts", Err: err}
	}

	listed := make([]*domain.Account, 0, len(docs))
	for _, doc := range docs {
		listed = append(listed, &domain.Account{
			ID:            doc.ID,
			AccountNumber: doc.AccountNumber,
			Nickname:      doc.Nickname,
			Type:          domain.AccountType(doc.Type),
			Balance:       doc.Balance,
		})
	}
	return listed, nil
}

// Login authenticates against the Authority and stores the bearer token
func (c *Client) Login(ctx context.Context, email, password string) error {
	var decoded loginResponse
	_, err := c.post(ctx, "/api/auth/login", loginRequest{Email: email, Password: password}, nil, &decoded)
	if err != nil {
		if apiErr, ok := err.(*apiError); ok {
			return fmt.Errorf("login: %s", apiErr.Message)
		}
		return &domain.TransportError{Op: "login", Err: err}
	}

	if err := c.creds.Set(decoded.Token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	c.log.Info().Msg("Authenticated with the Authority")
	return nil
}

// apiError is a non-2xx response with a decoded message
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("authority returned status %d: %s", e.StatusCode, e.Message)
}

// post marshals body, sends it, and decodes the response into out
func (c *Client) post(ctx context.Context, path string, body any, headers map[string]string, out any) (int, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(encoded))
	if err != nil {
		return 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	url := c.baseURL + path

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do sends the request, surfacing non-2xx responses as *apiError with the
// server's message when one can be decoded.
func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var decoded errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
		if decoded.Message == "" {
			decoded.Message = fmt.Sprintf("HTTP error %d", resp.StatusCode)
		}
		return resp.StatusCode, &apiError{StatusCode: resp.StatusCode, Message: decoded.Message}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func payloadFromIntent(intent *domain.TransferIntent) transferPayload {
	return transferPayload{
		TransferType:           string(intent.Type),
		FromAccountID:          intent.FromAccountID,
		ToAccountID:            intent.ToAccountID,
		RecipientAccountNumber: intent.RecipientAccountNumber,
		Amount:                 intent.Amount.String(),
		Description:            intent.Description,
	}
}
