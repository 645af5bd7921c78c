package providers

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	id "github.com/emersion/go-imap-id"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"

	"github.com/focusmate/core/internal/config"
)

var (
	// ErrIMAPConnectionFailed indicates the IMAP connection could not be established
	ErrIMAPConnectionFailed = errors.New("IMAP connection failed")
	// ErrMessageNotFound indicates no message matched the requested id
	ErrMessageNotFound = errors.New("message not found")
)

// IMAPProvider implements MailProvider over an IMAP mailbox. Each call
// opens a fresh connection; the provider keeps no connection state.
type IMAPProvider struct {
	cfg config.IMAPConfig
}

// NewIMAPProvider creates a mail provider for the configured mailbox.
func NewIMAPProvider(cfg config.IMAPConfig) *IMAPProvider {
	return &IMAPProvider{cfg: cfg}
}

func (p *IMAPProvider) connect() (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var c *client.Client
	if p.cfg.UseSSL {
		tlsConfig := &tls.Config{ServerName: p.cfg.Host}
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
		c, err = client.New(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
	} else {
		conn, err := dialer.Dial("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
		c, err = client.New(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
	}

	c.Timeout = 2 * time.Minute

	// Some providers require client identification before login.
	if ok, _ := c.Support("ID"); ok {
		idClient := id.NewClient(c)
		_, _ = idClient.ID(id.ID{
			id.FieldName:    "FocusMate",
			id.FieldVersion: "1.0.0",
			id.FieldVendor:  "FocusMate",
		})
	}

	if p.cfg.AuthType == "oauth2" {
		saslClient := NewXOAuth2Client(p.cfg.Username, p.cfg.Password)
		if err := c.Authenticate(saslClient); err != nil {
			c.Logout()
			return nil, fmt.Errorf("%w: XOAUTH2 authentication failed: %v", ErrIMAPConnectionFailed, err)
		}
	} else {
		if err := c.Login(p.cfg.Username, p.cfg.Password); err != nil {
			c.Logout()
			return nil, fmt.Errorf("%w: login failed: %v", ErrIMAPConnectionFailed, err)
		}
	}

	return c, nil
}

// XOAuth2Client implements the SASL XOAUTH2 mechanism
type XOAuth2Client struct {
	Username    string
	AccessToken string
}

// NewXOAuth2Client creates a new XOAUTH2 SASL client
func NewXOAuth2Client(username, accessToken string) *XOAuth2Client {
	return &XOAuth2Client{Username: username, AccessToken: accessToken}
}

// Start begins the XOAUTH2 authentication
func (c *XOAuth2Client) Start() (mech string, ir []byte, err error) {
	ir = []byte(fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", c.Username, c.AccessToken))
	return "XOAUTH2", ir, nil
}

// Next handles server challenges (XOAUTH2 doesn't have additional challenges)
func (c *XOAuth2Client) Next(challenge []byte) (response []byte, err error) {
	return nil, nil
}

// Fetch loads a single message by its Message-Id header.
func (p *IMAPProvider) Fetch(messageID string) (*RawMessage, error) {
	c, err := p.connect()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %v", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header = textproto.MIMEHeader{}
	criteria.Header.Add("Message-Id", messageID)
	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search failed: %v", err)
	}
	if len(seqNums) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums[0])

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}
	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, items, messages)
	}()

	var raw *RawMessage
	for msg := range messages {
		if msg == nil {
			continue
		}
		raw = parseIMAPMessage(msg, section)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch failed: %v", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}
	if raw.MessageID == "" {
		raw.MessageID = messageID
	}
	return raw, nil
}

// ListRecent returns the Message-Id values of unread messages received in
// the last windowDays days.
func (p *IMAPProvider) ListRecent(windowDays int) ([]string, error) {
	c, err := p.connect()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %v", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if windowDays > 0 {
		since := time.Now().AddDate(0, 0, -windowDays)
		criteria.Since = time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.UTC)
	}

	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search failed: %v", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope}, messages)
	}()

	var ids []string
	for msg := range messages {
		if msg == nil || msg.Envelope == nil || msg.Envelope.MessageId == "" {
			continue
		}
		ids = append(ids, msg.Envelope.MessageId)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch failed: %v", err)
	}
	return ids, nil
}

// MarkProcessed adds the \Seen flag to the message. Best-effort.
func (p *IMAPProvider) MarkProcessed(messageID string) error {
	c, err := p.connect()
	if err != nil {
		return err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", false); err != nil {
		return fmt.Errorf("failed to select INBOX: %v", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header = textproto.MIMEHeader{}
	criteria.Header.Add("Message-Id", messageID)
	seqNums, err := c.Search(criteria)
	if err != nil || len(seqNums) == 0 {
		return nil // already gone or unfindable; nothing to do
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	return c.Store(seqSet, item, []interface{}{imap.SeenFlag}, nil)
}

func parseIMAPMessage(msg *imap.Message, section *imap.BodySectionName) *RawMessage {
	raw := &RawMessage{}

	if msg.Envelope != nil {
		raw.MessageID = msg.Envelope.MessageId
		raw.Subject = msg.Envelope.Subject
		if !msg.Envelope.Date.IsZero() {
			d := msg.Envelope.Date
			raw.ReceivedAt = &d
		}
		if len(msg.Envelope.From) > 0 {
			raw.Sender = formatAddress(msg.Envelope.From[0])
		}
	}

	literal := msg.GetBody(section)
	if literal == nil {
		return raw
	}
	content, err := io.ReadAll(literal)
	if err != nil {
		return raw
	}

	entity, err := message.Read(bytes.NewReader(content))
	if err != nil {
		return raw
	}
	if raw.MessageID == "" {
		raw.MessageID = strings.TrimSpace(entity.Header.Get("Message-Id"))
	}

	var plain, html string
	collectBodies(entity, &plain, &html)
	if plain != "" {
		raw.Body = plain
	} else if html != "" {
		raw.Body = stripHTML(html)
	}
	return raw
}

// collectBodies walks the message entity tree picking the first text/plain
// and text/html parts.
func collectBodies(entity *message.Entity, plain, html *string) {
	mediaType, _, _ := entity.Header.ContentType()

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := entity.MultipartReader()
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			collectBodies(part, plain, html)
		}
		return
	}
	if mediaType == "text/plain" && *plain == "" {
		body, _ := io.ReadAll(entity.Body)
		*plain = string(body)
	} else if mediaType == "text/html" && *html == "" {
		body, _ := io.ReadAll(entity.Body)
		*html = string(body)
	}
}

var (
	htmlTagPattern    = regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>|<[^>]+>`)
	htmlEntityReplace = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'")
	blankLinePattern  = regexp.MustCompile(`\n{3,}`)
)

func stripHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = htmlEntityReplace.Replace(s)
	s = blankLinePattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func formatAddress(addr *imap.Address) string {
	if addr.PersonalName != "" {
		return fmt.Sprintf("%s <%s@%s>", addr.PersonalName, addr.MailboxName, addr.HostName)
	}
	return fmt.Sprintf("%s@%s", addr.MailboxName, addr.HostName)
}
