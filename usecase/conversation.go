package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/internal/contact"
	"github.com/dengun/assistant/server/internal/i18n"
	"github.com/dengun/assistant/server/internal/prompt"
)

const (
	maxSuggestions     = 4
	sideChannelTimeout = 15 * time.Second
)

var (
	// ErrEmptyInput is returned for empty or whitespace-only input; nothing is recorded
	ErrEmptyInput = errors.New("input is empty")
	// ErrReplyPending is returned while another reply is in flight
	ErrReplyPending = errors.New("a reply is already pending")
	// ErrNoTranscript is returned when a recording produced no text
	ErrNoTranscript = errors.New("no transcript")
	// ErrUnknownMessage is returned for a message id not in the conversation
	ErrUnknownMessage = errors.New("unknown message")
	// ErrConversationStarted is returned by RequestGreeting once messages exist
	ErrConversationStarted = errors.New("conversation already started")
	// ErrVoiceBusy is returned by SpeakMessage while recording or a voice reply is in flight
	ErrVoiceBusy = errors.New("voice interface is busy")

	errVoiceClosed = errors.New("voice interface closed")
)

// State is a point-in-time copy of the conversation for rendering
type State struct {
	Messages           []entities.Message
	PendingReply       bool
	VoiceState         entities.VoiceState
	Language           i18n.Language
	Suggestions        []string
	SuggestionsVisible bool
	Feedback           map[string]entities.FeedbackKind
}

// Conversation is the widget's conversation state machine. Network calls run
// outside the lock; PendingReply guarantees one reply in flight.
type Conversation struct {
	mu    sync.Mutex
	proxy Proxy
	lang  *i18n.Store
	voice *VoiceLifecycle
	side  conc.WaitGroup

	messages           []entities.Message
	pendingReply       bool
	voiceState         entities.VoiceState
	voiceGen           uint64 // bumped by CloseVoice; stale turns do not touch the devices
	suggestions        []string
	suggestionsVisible bool
	interacted         bool
	feedback           map[string]entities.FeedbackKind

	logger *zap.Logger
}

// NewConversation creates an empty conversation and samples its first suggestions
func NewConversation(proxy Proxy, lang *i18n.Store, voice *VoiceLifecycle, logger *zap.Logger) *Conversation {
	c := &Conversation{
		proxy:      proxy,
		lang:       lang,
		voice:      voice,
		voiceState: entities.VoiceIdle,
		feedback:   make(map[string]entities.FeedbackKind),
		logger:     logger,
	}
	c.RefreshSuggestions()
	return c
}

// SendTextMessage records text, asks for a reply in the active language and
// records the reply or a localized error. It returns the assistant message.
func (c *Conversation) SendTextMessage(ctx context.Context, text string) (entities.Message, error) {
	if strings.TrimSpace(text) == "" {
		return entities.Message{}, ErrEmptyInput
	}

	c.mu.Lock()
	if c.pendingReply {
		c.mu.Unlock()
		return entities.Message{}, ErrReplyPending
	}
	c.appendLocked(entities.NewMessage(entities.AuthorUser, text))
	c.pendingReply = true
	c.voiceState = entities.VoiceAwaitingReply
	c.markInteractionLocked()
	transcript := c.transcriptLocked()
	lang := c.lang.Language()
	c.mu.Unlock()

	c.notifyIfContact(ctx, text, transcript)

	reply, err := c.proxy.Chat(ctx, prompt.LanguageQualified(text, lang))

	c.mu.Lock()
	defer c.mu.Unlock()

	var msg entities.Message
	switch {
	case err != nil:
		c.logger.Warn("Chat request failed", zap.Error(err))
		msg = entities.NewMessage(entities.AuthorAssistant, i18n.T(lang, "common.error"))
	case strings.TrimSpace(reply) == "":
		msg = entities.NewMessage(entities.AuthorAssistant, i18n.T(lang, "chat.greeting"))
	default:
		msg = entities.NewMessage(entities.AuthorAssistant, reply)
	}
	c.appendLocked(msg)
	c.pendingReply = false
	c.voiceState = entities.VoiceIdle
	return msg, nil
}

// SelectSuggestion sends a suggestion as a text message
func (c *Conversation) SelectSuggestion(ctx context.Context, suggestion string) (entities.Message, error) {
	return c.SendTextMessage(ctx, suggestion)
}

// SendVoiceMessage transcribes audio and, when there is text, records it and
// the reply, then speaks the reply. The returned message is the assistant's.
func (c *Conversation) SendVoiceMessage(ctx context.Context, audio []byte) (entities.Message, error) {
	c.mu.Lock()
	if c.pendingReply {
		c.mu.Unlock()
		return entities.Message{}, ErrReplyPending
	}
	c.pendingReply = true
	c.voiceState = entities.VoiceTranscribing
	c.markInteractionLocked()
	lang := c.lang.Language()
	gen := c.voiceGen
	c.mu.Unlock()

	text, err := c.transcribe(ctx, audio, lang)
	if err != nil {
		c.mu.Lock()
		c.pendingReply = false
		c.setVoiceStateLocked(gen, entities.VoiceIdle)
		c.mu.Unlock()
		return entities.Message{}, err
	}

	c.mu.Lock()
	c.appendLocked(entities.NewMessage(entities.AuthorUser, text))
	c.setVoiceStateLocked(gen, entities.VoiceAwaitingReply)
	transcript := c.transcriptLocked()
	c.mu.Unlock()

	c.notifyIfContact(ctx, text, transcript)

	reply, err := c.proxy.Chat(ctx, text)
	replied := err == nil && strings.TrimSpace(reply) != ""
	if err != nil {
		c.logger.Warn("Chat request failed", zap.Error(err))
	}

	c.mu.Lock()
	content := reply
	if !replied {
		content = i18n.T(lang, "chat.voiceFallback")
	}
	msg := entities.NewMessage(entities.AuthorAssistant, content)
	c.appendLocked(msg)
	c.pendingReply = false
	if !replied || c.voiceGen != gen {
		c.setVoiceStateLocked(gen, entities.VoiceIdle)
		c.mu.Unlock()
		return msg, nil
	}
	c.voiceState = entities.VoiceSpeaking
	c.mu.Unlock()

	c.speak(ctx, reply, gen)
	return msg, nil
}

// SpeakMessage plays an assistant message on demand
func (c *Conversation) SpeakMessage(ctx context.Context, messageID string) error {
	c.mu.Lock()
	msg, ok := c.findLocked(messageID)
	if !ok || !msg.IsAssistant() {
		c.mu.Unlock()
		return ErrUnknownMessage
	}
	if c.pendingReply || (c.voiceState.Busy() && c.voiceState != entities.VoiceSpeaking) {
		c.mu.Unlock()
		return ErrVoiceBusy
	}
	c.voiceState = entities.VoiceSpeaking
	gen := c.voiceGen
	c.mu.Unlock()

	return c.speak(ctx, msg.Content, gen)
}

// RequestGreeting asks for a greeting in the active language. Any failure
// records the static localized greeting so the list is never left empty.
func (c *Conversation) RequestGreeting(ctx context.Context) (entities.Message, error) {
	c.mu.Lock()
	if len(c.messages) > 0 {
		c.mu.Unlock()
		return entities.Message{}, ErrConversationStarted
	}
	if c.pendingReply {
		c.mu.Unlock()
		return entities.Message{}, ErrReplyPending
	}
	c.pendingReply = true
	lang := c.lang.Language()
	c.mu.Unlock()

	reply, err := c.proxy.Chat(ctx, prompt.Greeting(lang))
	if err != nil {
		c.logger.Warn("Greeting request failed", zap.Error(err))
	}
	if err != nil || strings.TrimSpace(reply) == "" {
		reply = i18n.T(lang, "chat.greeting")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	msg := entities.NewMessage(entities.AuthorAssistant, reply)
	c.appendLocked(msg)
	c.pendingReply = false
	return msg, nil
}

// ToggleFeedback flips the annotation on a message and reports it in the
// background. The local state is not rolled back if reporting fails.
func (c *Conversation) ToggleFeedback(ctx context.Context, messageID string, kind entities.FeedbackKind) (entities.FeedbackKind, error) {
	c.mu.Lock()
	msg, ok := c.findLocked(messageID)
	if !ok {
		c.mu.Unlock()
		return entities.FeedbackNone, ErrUnknownMessage
	}
	next := c.feedback[messageID].Toggle(kind)
	if next == entities.FeedbackNone {
		delete(c.feedback, messageID)
	} else {
		c.feedback[messageID] = next
	}
	c.markInteractionLocked()
	c.mu.Unlock()

	c.background(ctx, "feedback", func(ctx context.Context) error {
		return c.proxy.Feedback(ctx, entities.Feedback{
			MessageID: messageID,
			Kind:      next,
			Content:   msg.Content,
		})
	})
	return next, nil
}

// SubmitComment reports a comment on a message in the background
func (c *Conversation) SubmitComment(ctx context.Context, messageID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	msg, ok := c.findLocked(messageID)
	if !ok {
		c.mu.Unlock()
		return ErrUnknownMessage
	}
	c.markInteractionLocked()
	c.mu.Unlock()

	c.background(ctx, "comment", func(ctx context.Context) error {
		return c.proxy.Comment(ctx, entities.Comment{
			MessageID: messageID,
			Content:   msg.Content,
			Comment:   comment,
		})
	})
	return nil
}

// RefreshSuggestions samples up to four unique suggestions for the active
// language. They stay hidden once the user has interacted.
func (c *Conversation) RefreshSuggestions() []string {
	sample := lo.Samples(i18n.Suggestions(c.lang.Language()), maxSuggestions)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.suggestions = sample
	c.suggestionsVisible = !c.interacted && len(sample) > 0
	return append([]string(nil), sample...)
}

// SetLanguage switches the active language and resamples suggestions
func (c *Conversation) SetLanguage(lang i18n.Language) bool {
	if !c.lang.Set(lang) {
		return false
	}
	c.RefreshSuggestions()
	return true
}

// Reset starts a new session: messages, feedback and the interaction flag are
// cleared and suggestions are sampled again
func (c *Conversation) Reset() error {
	c.mu.Lock()
	if c.pendingReply {
		c.mu.Unlock()
		return ErrReplyPending
	}
	c.mu.Unlock()

	c.CloseVoice()

	c.mu.Lock()
	c.messages = nil
	c.feedback = make(map[string]entities.FeedbackKind)
	c.interacted = false
	c.mu.Unlock()

	c.RefreshSuggestions()
	return nil
}

// StartRecording begins capturing a voice message
func (c *Conversation) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.pendingReply {
		c.mu.Unlock()
		return ErrReplyPending
	}
	c.markInteractionLocked()
	gen := c.voiceGen
	c.mu.Unlock()

	if err := c.voice.StartRecording(ctx); err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}

	c.mu.Lock()
	c.setVoiceStateLocked(gen, entities.VoiceRecording)
	c.mu.Unlock()
	return nil
}

// StopRecording finishes the capture and sends it as a voice message
func (c *Conversation) StopRecording(ctx context.Context) (entities.Message, error) {
	audio, err := c.voice.StopRecording()

	c.mu.Lock()
	if c.voiceState == entities.VoiceRecording {
		c.voiceState = entities.VoiceIdle
	}
	c.mu.Unlock()

	if err != nil {
		return entities.Message{}, err
	}
	return c.SendVoiceMessage(ctx, audio)
}

// CloseVoice stops playback and recording and returns the voice state to idle
// from any state. A voice turn still in flight records its reply but no longer
// plays it.
func (c *Conversation) CloseVoice() {
	c.mu.Lock()
	c.voiceGen++
	c.voiceState = entities.VoiceIdle
	c.mu.Unlock()

	c.voice.Close()
}

// Snapshot returns a copy of the current state
func (c *Conversation) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	feedback := make(map[string]entities.FeedbackKind, len(c.feedback))
	for id, kind := range c.feedback {
		feedback[id] = kind
	}
	return State{
		Messages:           append([]entities.Message(nil), c.messages...),
		PendingReply:       c.pendingReply,
		VoiceState:         c.voiceState,
		Language:           c.lang.Language(),
		Suggestions:        append([]string(nil), c.suggestions...),
		SuggestionsVisible: c.suggestionsVisible,
		Feedback:           feedback,
	}
}

// Close releases the audio devices and waits for background reports
func (c *Conversation) Close() {
	c.CloseVoice()
	c.side.Wait()
}

func (c *Conversation) transcribe(ctx context.Context, audio []byte, lang i18n.Language) (string, error) {
	if len(audio) == 0 {
		return "", ErrNoTranscript
	}
	text, err := c.proxy.Transcribe(ctx, audio, string(lang))
	if err != nil {
		c.logger.Warn("Transcription failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrNoTranscript, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoTranscript
	}
	return text, nil
}

// speak synthesizes text and plays it while the voice generation is still gen.
// The state is back to idle when playback ends or fails to start.
func (c *Conversation) speak(ctx context.Context, text string, gen uint64) error {
	audio, err := c.proxy.Speak(ctx, text)
	if err == nil {
		err = c.playIfCurrent(ctx, audio, gen)
	}
	if err != nil {
		c.finishSpeaking(gen)
		if errors.Is(err, errVoiceClosed) {
			return nil
		}
		c.logger.Warn("Reply playback failed", zap.Error(err))
		return fmt.Errorf("failed to speak: %w", err)
	}
	return nil
}

// playIfCurrent holds the state lock across Play so CloseVoice cannot slip in
// between the generation check and the device starting
func (c *Conversation) playIfCurrent(ctx context.Context, audio []byte, gen uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voiceGen != gen {
		return errVoiceClosed
	}
	return c.voice.Play(ctx, bytes.NewReader(audio), func() { c.finishSpeaking(gen) })
}

func (c *Conversation) finishSpeaking(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voiceGen == gen && c.voiceState == entities.VoiceSpeaking {
		c.voiceState = entities.VoiceIdle
	}
}

// setVoiceStateLocked moves to state unless CloseVoice ran since gen was taken
func (c *Conversation) setVoiceStateLocked(gen uint64, state entities.VoiceState) {
	if c.voiceGen == gen {
		c.voiceState = state
	}
}

// notifyIfContact mails the transcript when text carries an email or phone number
func (c *Conversation) notifyIfContact(ctx context.Context, text, transcript string) {
	info := contact.Detect(text)
	if !info.Found() {
		return
	}
	c.background(ctx, "notify", func(ctx context.Context) error {
		return c.proxy.Notify(ctx, entities.ContactNotification{
			Email:        info.Email,
			Phone:        info.Phone,
			Conversation: transcript,
		})
	})
}

// background runs a best-effort report. Failures are logged and never surfaced.
func (c *Conversation) background(ctx context.Context, name string, fn func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	c.side.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, sideChannelTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			c.logger.Debug("Side channel failed", zap.String("channel", name), zap.Error(err))
		}
	})
}

func (c *Conversation) appendLocked(msg entities.Message) {
	c.messages = append(c.messages, msg)
}

func (c *Conversation) findLocked(id string) (entities.Message, bool) {
	for _, m := range c.messages {
		if m.ID == id {
			return m, true
		}
	}
	return entities.Message{}, false
}

func (c *Conversation) markInteractionLocked() {
	c.interacted = true
	c.suggestionsVisible = false
}

func (c *Conversation) transcriptLocked() string {
	var b strings.Builder
	for _, m := range c.messages {
		if m.IsAssistant() {
			b.WriteString("Assistente: ")
		} else {
			b.WriteString("Usuário: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}
