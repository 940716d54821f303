package bot

// User-facing texts. The bot speaks German to the learner; quiz prompts
// stay in English because they embed the learning language by name.
const (
	msgWelcome = "👋 Willkommen bei MemoMate! Los geht’s mit deiner Spracheinstellung."

	msgLanguagePrompt = "🌍 Wähle deine Lernsprache:\n" +
		"🇩🇪 Deutsch (DE)\n" +
		"🇬🇧 Englisch (EN)\n" +
		"🇪🇸 Spanisch (ES)\n" +
		"🇺🇦 Ukrainisch (UA)\n" +
		"🇷🇺 Russisch (RU)\n" +
		"👉 Bitte gib den Sprachcode in den Klammern ein:"

	msgBaseLanguage = "🙂 Das ist deine Ausgangssprache. Bitte wähle eine andere Lernsprache."

	msgLevelPrompt = "📊 Wähle jetzt dein Sprachniveau:\n" +
		"🔹 EASY\n" +
		"🔺 HARD\n" +
		"👉 Bitte tippe dein Level ein (z.B. 'HARD')"

	msgHelp = "🆘 Verfügbare Befehle:\n" +
		"- !start – Lernsession starten\n" +
		"- !stop – Lernsession beenden\n" +
		"- !lang – Sprache ändern\n" +
		"- !help – Diese Hilfe anzeigen"

	msgStop = "👋 Session beendet. Viel Erfolg beim Weiterlernen!"

	msgUnknown = "❓ Unbekannte Nachricht. Schreib '!help' für eine Liste aller Befehle."

	msgAlreadyActive = "Die Lernsession ist bereits aktiv. Schreib '!stop' um sie zu beenden."

	msgFinishSetup = "Bitte schließe zuerst die aktuelle Einrichtung ab."

	msgNoActiveSession = "Es ist leider aktuell keine aktive Lernsession vorhanden."

	msgNoContent = "😕 Gerade sind keine Vokabeln verfügbar. Versuch es später noch einmal."

	msgCorrect = "Correct"

	msgIncorrectFmt = "Incorrect. The correct answer is %s"

	msgQuestionFmt = "How to say %s in %s"
)
