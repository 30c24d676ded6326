package usecase

import (
	"fmt"
	"sort"
	"strings"

	"kb-assistant/internal/domain"
)

// Language selects the wording of the fixed prompt template.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"

	DefaultLanguage = LanguageArabic
)

// promptTemplate holds the fixed strings for one language. The refusal
// sentence is embedded in the system instruction.
type promptTemplate struct {
	system         string
	knowledgeLabel string
	questionLabel  string
	answerCue      string
}

var promptTemplates = map[Language]promptTemplate{
	LanguageArabic: {
		system: "أنت مساعد مفيد وذكي. أجب على أسئلة المستخدم بإيجاز ودقة، مستخدمًا فقط المعلومات المقدمة في 'قاعدة المعرفة'. " +
			"إذا لم تكن الإجابة موجودة بوضوح في قاعدة المعرفة، فاذكر ببساطة 'عذرًا، لا أستطيع العثور على هذه المعلومات في قاعدة المعرفة المتاحة لي.'",
		knowledgeLabel: "قاعدة المعرفة",
		questionLabel:  "سؤال المستخدم",
		answerCue:      "الإجابة",
	},
	LanguageEnglish: {
		system: "You are a helpful and smart assistant. Answer the user's questions briefly and accurately, using only the information provided in the 'Knowledge Base'. " +
			"If the answer is not clearly present in the knowledge base, simply say 'Sorry, I can't find this information in the knowledge base available to me.'",
		knowledgeLabel: "Knowledge Base",
		questionLabel:  "User Question",
		answerCue:      "Answer",
	},
}

// ParseLanguage validates a configured language code.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if lang == "" {
		return DefaultLanguage, nil
	}
	if _, ok := promptTemplates[lang]; !ok {
		return "", fmt.Errorf("usecase: unsupported language %q (supported: %s)", s, strings.Join(supportedLanguages(), ", "))
	}
	return lang, nil
}

func supportedLanguages() []string {
	out := make([]string, 0, len(promptTemplates))
	for lang := range promptTemplates {
		out = append(out, string(lang))
	}
	sort.Strings(out)
	return out
}

// buildPromptMessages returns the system instruction followed by a user
// message embedding the knowledge text and the question verbatim.
func buildPromptMessages(lang Language, knowledge, message string) []domain.ChatMessage {
	tmpl, ok := promptTemplates[lang]
	if !ok {
		tmpl = promptTemplates[DefaultLanguage]
	}
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: tmpl.system},
		{Role: domain.RoleUser, Content: buildUserPrompt(tmpl, knowledge, message)},
	}
}

func buildUserPrompt(tmpl promptTemplate, knowledge, message string) string {
	return fmt.Sprintf(
		"%s:\n%s\n\n%s: %s\n\n%s:",
		tmpl.knowledgeLabel,
		knowledge,
		tmpl.questionLabel,
		message,
		tmpl.answerCue,
	)
}
