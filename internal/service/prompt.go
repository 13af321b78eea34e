package service

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/stojkeex/testaii/internal/config"
	"github.com/stojkeex/testaii/internal/domain"
)

// languagePrompts maps a persona's nationality to the texting-style language
// instruction embedded in the system prompt.
var languagePrompts = map[string]string{
	"Slovenia":       "Odgovori v slovenščini, piši popolnoma neformalno kot da pišeš sms prijatelju. Brez velikih začetnic, brez ločil, kratko in sproščeno.",
	"Serbia":         "Odgovori na srpskom jeziku, piši potpuno neformalno kao da šalješ poruku prijatelju. Bez velikih slova, bez interpunkcije, kratko i opušteno.",
	"Croatia":        "Odgovori na hrvatskom jeziku, piši potpuno neformalno kao da šalješ poruku prijatelju. Bez velikih slova, bez interpunkcije, kratko i opušteno.",
	"Italy":          "Rispondi in italiano, scrivi in modo completamente informale come se stessi mandando un messaggio a un amico. Senza maiuscole, senza punteggiatura, breve e rilassato.",
	"Germany":        "Antworte auf Deutsch, schreibe völlig informell als würdest du eine SMS an einen Freund schicken. Ohne Großbuchstaben, ohne Satzzeichen, kurz und entspannt.",
	"France":         "Réponds en français, écris de manière complètement informelle comme si tu envoyais un SMS à un ami. Sans majuscules, sans ponctuation, court et décontracté.",
	"Spain":          "Responde en español, escribe de manera completamente informal como si estuvieras enviando un mensaje a un amigo. Sin mayúsculas, sin puntuación, corto y relajado.",
	"USA":            "respond in english, write completely informal like youre texting a friend. no caps, no punctuation, short and chill.",
	"United Kingdom": "respond in english, write completely informal like youre texting a mate. no caps, no punctuation, short and chill.",
	"Russia":         "Отвечай на русском языке, пиши совершенно неформально, как будто отправляешь сообщение другу. Без заглавных букв, без пунктуации, коротко и расслабленно.",
	"Japan":          "日本語で答えて、友達にメッセージを送るように完全にカジュアルに書いて。短くてリラックスした感じで。",
	"China":          "用中文回答，像给朋友发短信一样完全非正式地写。简短轻松。",
	"Brazil":         "Responda em português brasileiro, escreva de forma completamente informal como se estivesse mandando mensagem para um amigo. Sem maiúsculas, sem pontuação, curto e descontraído.",
}

// groupTopics are the stock conversation starters used when a group request
// arrives without a topic.
var groupTopics = []string{
	"what you did today",
	"funny story that happened",
	"your hobbies and interests",
	"favorite movies or music",
	"travel experiences",
	"food you love",
	"weekend plans",
	"childhood memories",
	"dreams and goals",
	"relationships and love",
	"work or school",
	"pets or animals",
	"sports or games",
	"technology",
	"books you read",
	"random thoughts",
	"life philosophy",
	"family stories",
	"adventures you want to try",
	"things that make you happy",
}

// PromptAssembler turns a GenerationRequest into the generateContent payload.
// The RNG is injected so topic selection is deterministic in tests.
type PromptAssembler struct {
	rng *rand.Rand
}

func NewPromptAssembler(rng *rand.Rand) *PromptAssembler {
	return &PromptAssembler{rng: rng}
}

// Assemble builds the full role-tagged transcript: system instruction, a
// priming acknowledgment from the persona, the trimmed history, and the new
// user prompt.
func (a *PromptAssembler) Assemble(req *domain.GenerationRequest) *geminiRequest {
	system := a.systemPrompt(req)

	contents := make([]geminiContent, 0, config.HistoryWindow+3)
	contents = append(contents,
		geminiContent{Role: "user", Parts: []geminiPart{{Text: system}}},
		// Priming turn so the model treats the instruction as settled
		// context instead of a question to answer.
		geminiContent{Role: "model", Parts: []geminiPart{{Text: "ok razumem"}}},
	)

	for _, turn := range trimHistory(req.History) {
		contents = append(contents, geminiContent{
			Role:  roleFor(turn.Role),
			Parts: []geminiPart{{Text: turnText(req, turn)}},
		})
	}

	prompt := req.Prompt
	if req.Mode == domain.ModeGroup {
		prompt = req.User.Name + ": " + prompt
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: prompt}}})

	return &geminiRequest{Contents: contents}
}

func (a *PromptAssembler) systemPrompt(req *domain.GenerationRequest) string {
	p := req.Persona
	lang := languageInstruction(p.Nationality)
	traits := strings.Join(p.Traits, ", ")
	if traits == "" {
		traits = "friendly"
	}

	switch req.Mode {
	case domain.ModeGroup:
		topic := req.Topic
		if topic == "" {
			topic = groupTopics[a.rng.Intn(len(groupTopics))]
		}
		return fmt.Sprintf(`You are %s, a %d-year-old %s from %s.
Traits: %s.
You are in a group chat. Talk naturally about %s or respond to what others are saying.

**IMPORTANT INSTRUCTIONS:**
%s
- Never admit you are an AI
- Keep responses short but engaging (1-3 sentences)
- Share personal stories and experiences
- Ask questions to others sometimes
- React naturally to what others are saying
- Talk about life, love, dreams, experiences
- Use emojis occasionally but not excessively
- Be authentic and relatable
- NEVER include your name before your message - just write the message directly`,
			p.Name, p.Age, p.Gender, p.Nationality, traits, topic, lang)

	default:
		u := req.User
		return fmt.Sprintf(`You are %s, a %d-year-old %s from %s.
Traits: %s.
You are chatting privately with %s, a %s from %s.

**IMPORTANT INSTRUCTIONS:**
%s
- Never admit you are an AI
- Remember details about %s and reference them naturally
- Keep responses conversational and engaging
- Share personal stories and experiences
- Use emojis occasionally but not excessively
- Be authentic and relatable
- NEVER include your name before your message - just write the message directly`,
			p.Name, p.Age, p.Gender, p.Nationality, traits, u.Name, u.Gender, u.Location, lang, u.Name)
	}
}

// languageInstruction falls back to the USA instruction for nationalities
// outside the mapping.
func languageInstruction(nationality string) string {
	if instr, ok := languagePrompts[nationality]; ok {
		return instr
	}
	return languagePrompts["USA"]
}

// trimHistory keeps the most recent window of turns in original order.
func trimHistory(history []domain.Turn) []domain.Turn {
	if len(history) > config.HistoryWindow {
		return history[len(history)-config.HistoryWindow:]
	}
	return history
}

func roleFor(r domain.Role) string {
	if r == domain.RoleUser {
		return "user"
	}
	return "model"
}

// turnText renders one history turn. Group transcripts carry the speaker
// name inline so the model can tell participants apart.
func turnText(req *domain.GenerationRequest, turn domain.Turn) string {
	if req.Mode != domain.ModeGroup {
		return turn.Content.Text
	}
	sender := turn.Content.SenderName
	if sender == "" {
		sender = req.User.Name
	}
	return sender + ": " + turn.Content.Text
}
