// Package elevenlabs is a typed client for the slices of the ElevenLabs
// Conversational AI API this service consumes: fetching and listing
// finished conversations and upserting knowledge-base text documents.
// Whatever shape the service returns is mapped here into stable internal
// types so the rest of the system never sees upstream schema drift.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/solacelabs/solace/internal/faults"
	"github.com/solacelabs/solace/internal/transcript"
)

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Conversation is the stable internal view of one finished session.
type Conversation struct {
	ID     string
	Status string
	Turns  []transcript.Turn
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	ConversationID   string `json:"conversation_id"`
	AgentName        string `json:"agent_name"`
	Status           string `json:"status"`
	CallDurationSecs int    `json:"call_duration_secs"`
}

// conversationPayload is the loose wire shape; fields may be absent.
type conversationPayload struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
	Transcript     []struct {
		Role    string `json:"role"`
		Message string `json:"message"`
	} `json:"transcript"`
}

// GetConversation fetches one conversation and adapts its transcript into
// ordered speaker-tagged turns. An absent or empty transcript yields a
// Conversation with zero turns, not an error.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/convai/conversations/"+url.PathEscape(conversationID), nil)
	if err != nil {
		return nil, err
	}

	var payload conversationPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse conversation %s: %w", conversationID, err)
	}

	conv := &Conversation{ID: conversationID, Status: payload.Status}
	if payload.ConversationID != "" {
		conv.ID = payload.ConversationID
	}
	for _, entry := range payload.Transcript {
		speaker := transcript.SpeakerAgent
		if entry.Role == "user" {
			speaker = transcript.SpeakerUser
		}
		text := entry.Message
		if text == "" {
			text = "[message missing]"
		}
		conv.Turns = append(conv.Turns, transcript.Turn{Speaker: speaker, Text: text})
	}
	return conv, nil
}

// ListConversations returns summaries of the agent's most recent
// conversations, newest first per the upstream default ordering. Summaries
// missing a conversation id are dropped.
func (c *Client) ListConversations(ctx context.Context, agentID string, pageSize int) ([]ConversationSummary, error) {
	q := url.Values{}
	if agentID != "" {
		q.Set("agent_id", agentID)
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	path := "/v1/convai/conversations"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Conversations []ConversationSummary `json:"conversations"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse conversation list: %w", err)
	}

	out := payload.Conversations[:0]
	for _, s := range payload.Conversations {
		if s.ConversationID == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// DeleteConversation removes a conversation from the upstream service.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/v1/convai/conversations/"+url.PathEscape(conversationID), nil)
	return err
}

// UploadKnowledgeText upserts a named text document into the knowledge
// base and returns the document id the service assigned.
func (c *Client) UploadKnowledgeText(ctx context.Context, name, text string) (string, error) {
	reqBody, err := json.Marshal(map[string]string{
		"name": name,
		"text": text,
	})
	if err != nil {
		return "", fmt.Errorf("marshal knowledge payload: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/v1/convai/knowledge-base/text", reqBody)
	if err != nil {
		return "", err
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse knowledge response: %w", err)
	}
	return resp.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody []byte) ([]byte, error) {
	var reader io.Reader
	if reqBody != nil {
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, faults.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: %w: status %d: %s", method, path, faults.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	return body, nil
}
