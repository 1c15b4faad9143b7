// Package prompt builds the texts sent to the completion provider.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dengun/assistant/server/internal/i18n"
)

const (
	InstructionsFile = "AI_INSTRUCTIONS.md"
	KnowledgeFile    = "AI_KNOWLEDGE.md"
)

// Knowledge reads the instruction and knowledge documents from a directory.
// Files are read on every call so edits apply without a restart.
type Knowledge struct {
	dir string
}

func NewKnowledge(dir string) *Knowledge {
	return &Knowledge{dir: dir}
}

// Load returns the instructions and knowledge base documents
func (k *Knowledge) Load() (instructions, knowledge string, err error) {
	instructions, err = k.read(InstructionsFile)
	if err != nil {
		return "", "", err
	}
	knowledge, err = k.read(KnowledgeFile)
	if err != nil {
		return "", "", err
	}
	return instructions, knowledge, nil
}

func (k *Knowledge) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(k.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// System assembles the system message around the two documents
func System(instructions, knowledge string) string {
	var b strings.Builder
	b.WriteString("Você é o assistente de IA da Dengun, uma Startup Studio e Agência Digital sediada em Faro, Portugal. ")
	b.WriteString("Sua função é ajudar os visitantes a entender os serviços da Dengun e guiá-los em sua jornada de transformação digital.\n\n")
	b.WriteString("[INSTRUÇÕES]\n")
	b.WriteString(instructions)
	b.WriteString("\n\n[BASE DE CONHECIMENTO]\n")
	b.WriteString(knowledge)
	b.WriteString(`

IMPORTANTE:
- Responda no idioma pedido na mensagem; sem indicação, responda em português
- Seja criativo e original em suas respostas
- Use o tom e estilo definidos nas instruções
- Incorpore informações relevantes da base de conhecimento
- Nunca copie exemplos diretamente das instruções
- Evite começar suas respostas com cumprimentos (olá, oi, etc) ou afirmações (claro, sim, etc)
- Responda de forma direta e natural, como em uma conversa real
- Mantenha suas respostas concisas e objetivas
- Use linguagem coloquial e amigável, mas mantenha o profissionalismo`)
	return b.String()
}

// LanguageQualified asks the model to answer only in lang
func LanguageQualified(text string, lang i18n.Language) string {
	return fmt.Sprintf("%s\n\nPlease answer ONLY in %s, regardless of the language of the question. "+
		"Do not mention language or your ability to assist in other languages. Keep your answer short and concise.",
		text, i18n.Name(lang))
}

// Greeting asks for a short welcome message in lang
func Greeting(lang i18n.Language) string {
	return fmt.Sprintf("Generate a creative, warm, and original greeting for a new user in %s. "+
		"Use the INSTRUCTIONS to define the tone and style of the message, and the KNOWLEDGE BASE to incorporate "+
		"specific information about Dengun and its services. Be original and do not copy any examples from the instructions. "+
		"The greeting should reflect Dengun's professional and welcoming personality, mentioning some of the main services "+
		"and inviting the user to explore how we can help. Keep your answer very short (1-2 sentences).",
		i18n.Name(lang))
}
