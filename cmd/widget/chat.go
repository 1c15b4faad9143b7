package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/adapters/proxy"
	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/internal/i18n"
	"github.com/dengun/assistant/server/internal/theme"
	"github.com/dengun/assistant/server/usecase"
)

const chatHelp = `Type a message, or one of:
  /voice <file>        send an audio file as a voice message
  /speak <n>           play assistant message n
  /like <n>            toggle like on message n
  /dislike <n>         toggle dislike on message n
  /comment <n> <text>  comment on message n
  /suggest <k>         send suggestion k
  /lang <code>         switch language (en, es, pt, fr, de)
  /theme               toggle light and dark
  /reset               start a new conversation
  /quit                leave`

func chatCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := initialLanguage(cfg.Language, prefs.Get("language"), os.Getenv("LANG"))
			initialTheme := theme.Theme(cfg.Theme)
			if themeFlag == "" && prefs.Get("theme") != "" {
				initialTheme = theme.Theme(prefs.Get("theme"))
			}

			recorder := &fileRecorder{}
			player := &filePlayer{dir: outputDir, out: cmd.OutOrStdout()}
			conv := usecase.NewConversation(
				proxy.NewClient(cfg.ServerURL, logger),
				i18n.NewStore(lang, prefs, logger),
				usecase.NewVoiceLifecycle(recorder, player, logger),
				logger,
			)
			defer conv.Close()

			s := &chatSession{
				conv:     conv,
				themes:   theme.NewStore(initialTheme, prefs, logger),
				recorder: recorder,
				out:      cmd.OutOrStdout(),
				logger:   logger,
			}
			return s.run(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&outputDir, "out", filepath.Join(os.TempDir(), "dengun-assistant"), "directory spoken replies are written to")
	return cmd
}

// chatSession renders a conversation and maps terminal commands onto it
type chatSession struct {
	conv     *usecase.Conversation
	themes   *theme.Store
	recorder *fileRecorder
	out      io.Writer
	logger   *zap.Logger
}

func (s *chatSession) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, chatHelp)

	if msg, err := s.conv.RequestGreeting(ctx); err == nil {
		s.printMessage(msg)
	}
	s.printSuggestions()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.paint(promptColor, "> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		if quit := s.handle(ctx, scanner.Text()); quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// handle executes one input line and reports whether the session should end
func (s *chatSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		s.reply(s.conv.SendTextMessage(ctx, line))
		return false
	}

	command, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)

	switch command {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(s.out, chatHelp)
	case "voice":
		s.sendVoice(ctx, rest)
	case "speak":
		if id, ok := s.messageID(rest); ok {
			if err := s.conv.SpeakMessage(ctx, id); err != nil {
				s.printError(err)
			}
		}
	case "like", "dislike":
		if id, ok := s.messageID(rest); ok {
			kind, err := s.conv.ToggleFeedback(ctx, id, entities.FeedbackKind(command))
			if err != nil {
				s.printError(err)
				break
			}
			if kind == entities.FeedbackNone {
				fmt.Fprintln(s.out, "feedback cleared")
			} else {
				fmt.Fprintf(s.out, "marked as %s\n", kind)
			}
		}
	case "comment":
		ref, text, _ := strings.Cut(rest, " ")
		if id, ok := s.messageID(ref); ok {
			if err := s.conv.SubmitComment(ctx, id, text); err != nil {
				s.printError(err)
				break
			}
			fmt.Fprintln(s.out, "comment sent")
		}
	case "suggest":
		state := s.conv.Snapshot()
		k, err := strconv.Atoi(rest)
		if err != nil || k < 1 || k > len(state.Suggestions) || !state.SuggestionsVisible {
			fmt.Fprintln(s.out, "no such suggestion")
			break
		}
		s.reply(s.conv.SelectSuggestion(ctx, state.Suggestions[k-1]))
	case "lang":
		lang, _ := i18n.Parse(rest)
		if !s.conv.SetLanguage(lang) {
			fmt.Fprintf(s.out, "unsupported language %q\n", rest)
			break
		}
		fmt.Fprintf(s.out, "language: %s\n", i18n.Name(lang))
		s.printSuggestions()
	case "theme":
		key := "settings.lightMode"
		if s.themes.Toggle() == theme.Dark {
			key = "settings.darkMode"
		}
		fmt.Fprintln(s.out, i18n.T(s.conv.Snapshot().Language, key))
	case "reset":
		if err := s.conv.Reset(); err != nil {
			s.printError(err)
			break
		}
		if msg, err := s.conv.RequestGreeting(ctx); err == nil {
			s.printMessage(msg)
		}
		s.printSuggestions()
	default:
		fmt.Fprintf(s.out, "unknown command /%s, try /help\n", command)
	}
	return false
}

func (s *chatSession) sendVoice(ctx context.Context, path string) {
	if path == "" {
		fmt.Fprintln(s.out, "usage: /voice <file>")
		return
	}
	s.recorder.use(path)
	if err := s.conv.StartRecording(ctx); err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintln(s.out, i18n.T(s.conv.Snapshot().Language, "voice.aiThinking"))

	msg, err := s.conv.StopRecording(ctx)
	if errors.Is(err, usecase.ErrNoTranscript) {
		fmt.Fprintln(s.out, "nothing was heard")
		return
	}
	s.reply(msg, err)
}

func (s *chatSession) reply(msg entities.Message, err error) {
	if err != nil {
		s.printError(err)
		return
	}
	// The user's own line is already on screen, so only the reply is printed.
	s.printMessage(msg)
}

// messageID resolves the 1-based message number shown next to each message
func (s *chatSession) messageID(ref string) (string, bool) {
	n, err := strconv.Atoi(ref)
	messages := s.conv.Snapshot().Messages
	if err != nil || n < 1 || n > len(messages) {
		fmt.Fprintln(s.out, "no such message")
		return "", false
	}
	return messages[n-1].ID, true
}

func (s *chatSession) printMessage(msg entities.Message) {
	state := s.conv.Snapshot()
	n := 0
	for i, m := range state.Messages {
		if m.ID == msg.ID {
			n = i + 1
		}
	}

	label, color := "you", userColor
	if msg.IsAssistant() {
		label, color = "assistant", assistantColor
	}
	fmt.Fprintf(s.out, "%s %s\n", s.paint(color, fmt.Sprintf("[%d] %s:", n, label)), msg.Content)
}

func (s *chatSession) printSuggestions() {
	state := s.conv.Snapshot()
	if !state.SuggestionsVisible {
		return
	}
	fmt.Fprintln(s.out, s.paint(suggestionColor, i18n.T(state.Language, "chat.suggestions")))
	for i, suggestion := range state.Suggestions {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, suggestion)
	}
}

func (s *chatSession) printError(err error) {
	s.logger.Debug("Command failed", zap.Error(err))
	fmt.Fprintln(s.out, s.paint(errorColor, "error: "+err.Error()))
}

type color int

const (
	promptColor color = iota
	userColor
	assistantColor
	suggestionColor
	errorColor
)

var palettes = map[theme.Theme]map[color]string{
	theme.Light: {
		promptColor:     "\033[34m",
		userColor:       "\033[34m",
		assistantColor:  "\033[35m",
		suggestionColor: "\033[90m",
		errorColor:      "\033[31m",
	},
	theme.Dark: {
		promptColor:     "\033[96m",
		userColor:       "\033[96m",
		assistantColor:  "\033[95m",
		suggestionColor: "\033[37m",
		errorColor:      "\033[91m",
	},
}

func (s *chatSession) paint(c color, text string) string {
	return palettes[s.themes.Theme()][c] + text + "\033[0m"
}
