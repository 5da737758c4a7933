package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"estatewise/server/internal/models"
)

const defaultAPIBase = "https://api.telegram.org"

// Config holds the bot credentials
type Config struct {
	IsEnabled bool
	BotToken  string
	ChatID    string
}

// Service posts batch summaries to a Telegram chat
type Service struct {
	logger  *logrus.Logger
	client  *http.Client
	config  Config
	apiBase string
}

func NewService(config Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		config:  config,
		apiBase: defaultAPIBase,
	}
}

// WithAPIBase points the service at another Bot API host.
func (s *Service) WithAPIBase(base string) *Service {
	s.apiBase = strings.TrimRight(base, "/")
	return s
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(ctx context.Context, message string) error {
	if !s.config.IsEnabled {
		return nil
	}

	if s.config.BotToken == "" {
		return errors.New("telegram bot token is not configured")
	}

	if s.config.ChatID == "" {
		return errors.New("telegram chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusNotFound:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		default:
			return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyBatchCompleted sends a summary of a finished batch job, listing the
// properties with the widest gap between asking price and value.
func (s *Service) NotifyBatchCompleted(ctx context.Context, job *models.BatchJob, outcomes []models.AnalysisOutcome) error {
	if !s.config.IsEnabled {
		return nil
	}
	if err := s.SendMessage(ctx, FormatBatchSummary(job, outcomes)); err != nil {
		return err
	}
	s.logger.WithField("batch_id", job.ID).Debug("Sent batch summary to Telegram")
	return nil
}

const maxHighlights = 3

type highlight struct {
	address  string
	value    float64
	asking   float64
	strategy string
}

func FormatBatchSummary(job *models.BatchJob, outcomes []models.AnalysisOutcome) string {
	title := "<b>Batch analysis completed</b>"
	if job.Status == models.BatchFailed {
		title = "<b>⚠️ Batch analysis failed</b>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	fmt.Fprintf(&b, "🆔 %s\n", html.EscapeString(job.ID))
	fmt.Fprintf(&b, "✅ %d succeeded, ❌ %d failed of %d\n", job.Succeeded, job.Failed, job.Total)
	if job.Error != "" {
		fmt.Fprintf(&b, "💥 %s\n", html.EscapeString(job.Error))
	}

	var highlights []highlight
	for _, o := range outcomes {
		if !o.Success || o.Result == nil || o.Result.Property.ListingPrice == nil {
			continue
		}
		h := highlight{
			address: o.Result.Address,
			value:   o.Result.Valuation.FinalValue,
			asking:  *o.Result.Property.ListingPrice,
		}
		if top := o.Result.Negotiation.RecommendedStrategy; top != nil {
			h.strategy = top.Name
		}
		highlights = append(highlights, h)
	}
	sort.SliceStable(highlights, func(i, j int) bool {
		return highlights[i].value-highlights[i].asking > highlights[j].value-highlights[j].asking
	})
	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}

	if len(highlights) > 0 {
		b.WriteString("\n<b>Best value vs. asking</b>\n")
	}
	for _, h := range highlights {
		fmt.Fprintf(&b, "🏠 %s\n", html.EscapeString(h.address))
		fmt.Fprintf(&b, "   💰 asking $%s, valued $%s\n", humanize.Comma(int64(h.asking)), humanize.Comma(int64(h.value)))
		if h.strategy != "" {
			fmt.Fprintf(&b, "   📊 %s\n", html.EscapeString(h.strategy))
		}
	}

	return b.String()
}
