package i18n

var texts = map[string]TextSet{
	"chat.greeting": NewSet(
		"Hi! I'm the Dengun assistant. How can I help you today?",
		NewTrans(Portuguese, "Olá! Sou o assistente da Dengun. Como posso ajudar hoje?"),
		NewTrans(Spanish, "¡Hola! Soy el asistente de Dengun. ¿En qué puedo ayudarte hoy?"),
		NewTrans(French, "Bonjour ! Je suis l'assistant de Dengun. Comment puis-je vous aider aujourd'hui ?"),
		NewTrans(German, "Hallo! Ich bin der Dengun-Assistent. Wie kann ich Ihnen heute helfen?"),
	),
	"common.error": NewSet(
		"Something went wrong. Please try again.",
		NewTrans(Portuguese, "Ocorreu um erro. Por favor, tente novamente."),
		NewTrans(Spanish, "Algo salió mal. Por favor, inténtalo de nuevo."),
		NewTrans(French, "Une erreur s'est produite. Veuillez réessayer."),
		NewTrans(German, "Etwas ist schiefgelaufen. Bitte versuchen Sie es erneut."),
	),
	"chat.voiceFallback": NewSet(
		"Sorry, I couldn't answer right now.",
		NewTrans(Portuguese, "Desculpe, não consegui responder agora."),
		NewTrans(Spanish, "Lo siento, no he podido responder ahora."),
		NewTrans(French, "Désolé, je n'ai pas pu répondre pour le moment."),
		NewTrans(German, "Entschuldigung, ich konnte gerade nicht antworten."),
	),
	"chat.placeholder": NewSet(
		"Type your message...",
		NewTrans(Portuguese, "Escreva a sua mensagem..."),
		NewTrans(Spanish, "Escribe tu mensaje..."),
		NewTrans(French, "Écrivez votre message..."),
		NewTrans(German, "Schreiben Sie Ihre Nachricht..."),
	),
	"chat.suggestions": NewSet(
		"Suggestions",
		NewTrans(Portuguese, "Sugestões"),
		NewTrans(Spanish, "Sugerencias"),
		NewTrans(French, "Suggestions"),
		NewTrans(German, "Vorschläge"),
	),
	"voice.title": NewSet(
		"Voice mode",
		NewTrans(Portuguese, "Modo de voz"),
		NewTrans(Spanish, "Modo de voz"),
		NewTrans(French, "Mode vocal"),
		NewTrans(German, "Sprachmodus"),
	),
	"voice.aiSpeaking": NewSet(
		"Assistant is speaking...",
		NewTrans(Portuguese, "O assistente está a falar..."),
		NewTrans(Spanish, "El asistente está hablando..."),
		NewTrans(French, "L'assistant parle..."),
		NewTrans(German, "Der Assistent spricht..."),
	),
	"voice.aiThinking": NewSet(
		"Thinking...",
		NewTrans(Portuguese, "A pensar..."),
		NewTrans(Spanish, "Pensando..."),
		NewTrans(French, "Réflexion..."),
		NewTrans(German, "Denke nach..."),
	),
	"voice.loading": NewSet(
		"Loading...",
		NewTrans(Portuguese, "A carregar..."),
		NewTrans(Spanish, "Cargando..."),
		NewTrans(French, "Chargement..."),
		NewTrans(German, "Wird geladen..."),
	),
	"voice.start": NewSet(
		"Start recording",
		NewTrans(Portuguese, "Começar a gravar"),
		NewTrans(Spanish, "Empezar a grabar"),
		NewTrans(French, "Commencer l'enregistrement"),
		NewTrans(German, "Aufnahme starten"),
	),
	"voice.stop": NewSet(
		"Stop recording",
		NewTrans(Portuguese, "Parar de gravar"),
		NewTrans(Spanish, "Detener grabación"),
		NewTrans(French, "Arrêter l'enregistrement"),
		NewTrans(German, "Aufnahme beenden"),
	),
	"settings.lightMode": NewSet(
		"Light mode",
		NewTrans(Portuguese, "Modo claro"),
		NewTrans(Spanish, "Modo claro"),
		NewTrans(French, "Mode clair"),
		NewTrans(German, "Heller Modus"),
	),
	"settings.darkMode": NewSet(
		"Dark mode",
		NewTrans(Portuguese, "Modo escuro"),
		NewTrans(Spanish, "Modo oscuro"),
		NewTrans(French, "Mode sombre"),
		NewTrans(German, "Dunkler Modus"),
	),
}

var suggestions = map[Language][]string{
	English: {
		"What services does Dengun offer?",
		"How can Dengun help my startup?",
		"Can you show me some of your projects?",
		"Where is Dengun located?",
		"How do I start a project with you?",
		"Do you build mobile apps?",
		"What is a startup studio?",
		"How can I contact the team?",
	},
	Portuguese: {
		"Que serviços a Dengun oferece?",
		"Como pode a Dengun ajudar a minha startup?",
		"Pode mostrar-me alguns projetos?",
		"Onde fica a Dengun?",
		"Como começo um projeto convosco?",
		"Desenvolvem aplicações móveis?",
		"O que é um estúdio de startups?",
		"Como posso contactar a equipa?",
	},
	Spanish: {
		"¿Qué servicios ofrece Dengun?",
		"¿Cómo puede Dengun ayudar a mi startup?",
		"¿Puedes mostrarme algunos proyectos?",
		"¿Dónde está Dengun?",
		"¿Cómo empiezo un proyecto con vosotros?",
		"¿Desarrolláis aplicaciones móviles?",
	},
	French: {
		"Quels services propose Dengun ?",
		"Comment Dengun peut-il aider ma startup ?",
		"Pouvez-vous me montrer quelques projets ?",
		"Où se trouve Dengun ?",
		"Comment démarrer un projet avec vous ?",
	},
	German: {
		"Welche Leistungen bietet Dengun an?",
		"Wie kann Dengun meinem Startup helfen?",
		"Können Sie mir einige Projekte zeigen?",
		"Wo befindet sich Dengun?",
		"Wie starte ich ein Projekt mit Ihnen?",
	},
}

var languageNames = map[Language]string{
	Portuguese: "Portuguese",
	English:    "English",
	Spanish:    "Spanish",
	French:     "French",
	German:     "German",
}
