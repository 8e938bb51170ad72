package ui

import (
	"strings"

	"github.com/five82/hitcard/internal/prefs"
	"github.com/five82/hitcard/internal/session"
)

type catalogText map[string]string

var translations = map[string]catalogText{
	prefs.LangEnglish: {
		"scanner.title":           "hitcard",
		"scanner.subtitle":        "QR scanner",
		"scanner.tagline":         "Scan a QR code to play music",
		"scanner.start":           "Start",
		"scanner.scanning":        "Scanning. Scan a card or paste its link, then press enter.",
		"scanner.idle":            "Press enter to start scanning.",
		"scanner.showYear":        "Show year",
		"scanner.showTitleArtist": "Show title & artist",
		"scanner.info":            "This scanner is for Apple Music QR codes. For Spotify cards use your regular camera or QR scanner app.",
		"scanner.linkServer":      "Card links: {{addr}}",

		"player.nowPlaying":  "Now Playing",
		"player.closePlayer": "Close player",
		"player.playing":     "Playing",
		"player.paused":      "Paused",
		"player.buffering":   "Loading...",

		"camera.accessRequired":       "Camera access required",
		"camera.manualEntryHint":      "You can also enter the card's audio URL manually:",
		"camera.manualUrlPlaceholder": "Paste audio URL here...",
		"camera.loadAudio":            "Load audio",

		"messages.cameraNotSupported":       "Camera not supported on this device",
		"messages.cameraNotFound":           "No camera found on this device.",
		"messages.cameraPermissionDenied":   "Camera permission denied. Please enable camera access in your device settings.",
		"messages.cameraError":              "Please check camera permissions.",
		"messages.scannedInvalidUrl":        "Scanned: {{data}}\nThis doesn't appear to be a valid URL.",
		"messages.scannedInvalidAudioUrl":   "Scanned: {{data}}\nThis doesn't appear to be an audio URL.",
		"messages.catalogReferenceDetected": "Apple Music short URL detected! Validating...",
		"messages.urlDetected":              "URL detected. Checking if it's an audio file...",
		"messages.validating":               "Validating audio URL...",
		"messages.invalidAudio":             "Invalid or inaccessible audio URL. Please try a different QR code.",
		"messages.errorLoading":             "Error loading audio file. Please try again.",
		"messages.enterUrl":                 "Please enter a URL",
		"messages.invalidUrlFormat":         "Please enter a valid URL",
		"messages.httpsOnly":                "Only HTTPS URLs are permitted.",
		"messages.catalogOnly":              "Only Apple Music audio preview URLs are permitted.",
		"messages.loadingFromUrl":           "Loading audio from URL...",

		"activity.title": "Activity",
		"activity.empty": "Nothing logged yet.",
		"help.title":     "Keyboard Shortcuts",
	},
	prefs.LangGerman: {
		"scanner.title":           "hitcard",
		"scanner.subtitle":        "QR-Scanner",
		"scanner.tagline":         "Scanne einen QR-Code, um Musik abzuspielen",
		"scanner.start":           "Start",
		"scanner.scanning":        "Scanner aktiv. Scanne eine Karte oder füge ihren Link ein und drücke Enter.",
		"scanner.idle":            "Drücke Enter, um den Scanner zu starten.",
		"scanner.showYear":        "Jahr anzeigen",
		"scanner.showTitleArtist": "Titel & Interpret anzeigen",
		"scanner.info":            "Dieser Scanner ist für Apple Music QR-Codes. Für Spotify-Karten verwende deine normale Kamera oder QR-Scanner-App.",
		"scanner.linkServer":      "Karten-Links: {{addr}}",

		"player.nowPlaying":  "Aktuelle Wiedergabe",
		"player.closePlayer": "Player schließen",
		"player.playing":     "Wiedergabe",
		"player.paused":      "Pausiert",
		"player.buffering":   "Wird geladen...",

		"camera.accessRequired":       "Kamerazugriff erforderlich",
		"camera.manualEntryHint":      "Du kannst auch die Audio-URL der Karte manuell eingeben:",
		"camera.manualUrlPlaceholder": "Audio-URL hier einfügen...",
		"camera.loadAudio":            "Audio laden",

		"messages.cameraNotSupported":       "Kamera wird auf diesem Gerät nicht unterstützt",
		"messages.cameraNotFound":           "Keine Kamera auf diesem Gerät gefunden.",
		"messages.cameraPermissionDenied":   "Kamerazugriff verweigert. Bitte aktiviere den Kamerazugriff in den Geräteeinstellungen.",
		"messages.cameraError":              "Bitte überprüfe die Kameraberechtigungen.",
		"messages.scannedInvalidUrl":        "Gescannt: {{data}}\nDies scheint keine gültige URL zu sein.",
		"messages.scannedInvalidAudioUrl":   "Gescannt: {{data}}\nDies scheint keine Audio-URL zu sein.",
		"messages.catalogReferenceDetected": "Apple Music Short-URL erkannt! Wird überprüft...",
		"messages.urlDetected":              "URL erkannt. Wird überprüft, ob es eine Audiodatei ist...",
		"messages.validating":               "Audio-URL wird überprüft...",
		"messages.invalidAudio":             "Ungültige oder nicht erreichbare Audio-URL. Bitte versuche einen anderen QR-Code.",
		"messages.errorLoading":             "Fehler beim Laden der Audiodatei. Bitte versuche es erneut.",
		"messages.enterUrl":                 "Bitte gib eine URL ein",
		"messages.invalidUrlFormat":         "Bitte gib eine gültige URL ein",
		"messages.httpsOnly":                "Es sind nur HTTPS-URLs erlaubt.",
		"messages.catalogOnly":              "Es sind nur Apple Music Audio-Vorschau-URLs erlaubt.",
		"messages.loadingFromUrl":           "Audio wird von URL geladen...",

		"activity.title": "Aktivität",
		"activity.empty": "Noch nichts protokolliert.",
		"help.title":     "Tastenkürzel",
	},
}

// Languages lists the supported interface languages in toggle order.
var Languages = []string{prefs.LangEnglish, prefs.LangGerman}

// T looks up key in lang, falling back to English and then to the key
// itself. {{name}} placeholders are filled from params.
func T(lang, key string, params map[string]string) string {
	text, ok := translations[lang][key]
	if !ok {
		text, ok = translations[prefs.LangEnglish][key]
	}
	if !ok {
		return key
	}
	for name, value := range params {
		text = strings.ReplaceAll(text, "{{"+name+"}}", value)
	}
	return text
}

// MessageText renders a session message in lang. The zero message is "".
func MessageText(lang string, msg session.Message) string {
	if msg.IsZero() {
		return ""
	}
	return T(lang, "messages."+string(msg.Key), msg.Params)
}

func nextLanguage(current string) string {
	for i, lang := range Languages {
		if lang == current {
			return Languages[(i+1)%len(Languages)]
		}
	}
	return Languages[0]
}

// messageTone groups message keys by how they are styled.
type messageTone int

const (
	toneInfo messageTone = iota
	toneProgress
	toneError
)

func toneOf(key session.MessageKey) messageTone {
	switch key {
	case session.MessageCatalogReferenceDetected, session.MessageURLDetected,
		session.MessageValidating, session.MessageLoadingFromURL:
		return toneProgress
	case session.MessageNone:
		return toneInfo
	default:
		return toneError
	}
}
