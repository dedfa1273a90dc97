// Package imap reads briefing emails from a mailbox over IMAP.
package imap

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
)

// Email represents a fetched email message
type Email struct {
	ID      uint32
	From    string
	Subject string
	Body    string
	Date    time.Time
}

// Service provides mailbox reads using the configured credentials
type Service struct {
	config common.IMAPConfig
	logger arbor.ILogger
	dial   func(addr string, useTLS bool) (*client.Client, error)
}

// NewService creates a new IMAP service
func NewService(config common.IMAPConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
		dial: func(addr string, useTLS bool) (*client.Client, error) {
			if useTLS {
				return client.DialTLS(addr, nil)
			}
			return client.Dial(addr)
		},
	}
}

// IsConfigured checks that host and credentials are present
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// FetchLatestFrom returns up to perSender of the newest INBOX messages whose
// From header matches each sender, newest first within a sender
func (s *Service) FetchLatestFrom(ctx context.Context, senders []string, perSender int) ([]Email, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("IMAP not configured")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	c, err := s.dial(addr, s.config.UseTLS)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(s.config.Username, s.config.Password); err != nil {
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}
	if mbox.Messages == 0 {
		s.logger.Debug().Msg("No messages in INBOX")
		return []Email{}, nil
	}

	var emails []Email
	for _, sender := range senders {
		if ctx.Err() != nil {
			return emails, ctx.Err()
		}

		criteria := imap.NewSearchCriteria()
		criteria.Header.Add("From", sender)

		seqNums, err := c.Search(criteria)
		if err != nil {
			s.logger.Warn().Err(err).Str("sender", sender).Msg("IMAP search failed")
			continue
		}
		if len(seqNums) == 0 {
			continue
		}

		fetched, err := s.fetch(c, LatestSeqNums(seqNums, perSender))
		if err != nil {
			s.logger.Warn().Err(err).Str("sender", sender).Msg("IMAP fetch failed")
			continue
		}
		emails = append(emails, fetched...)
	}

	return emails, nil
}

// LatestSeqNums returns the n highest sequence numbers, highest first
func LatestSeqNums(seqNums []uint32, n int) []uint32 {
	sorted := append([]uint32(nil), seqNums...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func (s *Service) fetch(c *client.Client, seqNums []uint32) ([]Email, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	messages := make(chan *imap.Message, len(seqNums))
	section := &imap.BodySectionName{Peek: true}

	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}, messages)
	}()

	var emails []Email
	for msg := range messages {
		if msg == nil || msg.Envelope == nil {
			continue
		}

		body, err := s.parseMessageBody(msg, section)
		if err != nil {
			s.logger.Warn().Err(err).Uint32("seq", msg.SeqNum).Msg("Failed to parse message body")
			continue
		}

		from := ""
		if len(msg.Envelope.From) > 0 {
			addr := msg.Envelope.From[0]
			from = strings.TrimSpace(addr.PersonalName + " <" + addr.Address() + ">")
		}

		emails = append(emails, Email{
			ID:      msg.SeqNum,
			From:    from,
			Subject: msg.Envelope.Subject,
			Body:    body,
			Date:    msg.Envelope.Date,
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	sort.Slice(emails, func(i, j int) bool { return emails[i].ID > emails[j].ID })
	return emails, nil
}

// parseMessageBody prefers the text/plain part and falls back to converting
// text/html to markdown
func (s *Service) parseMessageBody(msg *imap.Message, section *imap.BodySectionName) (string, error) {
	r := msg.GetBody(section)
	if r == nil {
		return "", fmt.Errorf("no body section")
	}
	return ParseBody(r)
}

// ParseBody extracts readable text from a raw RFC 822 message
func ParseBody(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to create mail reader: %w", err)
	}

	var plain, html string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read next part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		b, err := io.ReadAll(p.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read body: %w", err)
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && plain == "":
			plain = string(b)
		case strings.HasPrefix(contentType, "text/html") && html == "":
			html = string(b)
		}
	}

	if strings.TrimSpace(plain) != "" {
		return strings.TrimSpace(plain), nil
	}
	if html == "" {
		return "", nil
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert html body: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
