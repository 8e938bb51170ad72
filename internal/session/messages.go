package session

import "github.com/five82/hitcard/internal/scan"

// MessageKey identifies a user-facing status. Text lives in the UI.
type MessageKey string

const (
	MessageNone                     MessageKey = ""
	MessageScannedInvalidURL        MessageKey = "scannedInvalidUrl"
	MessageScannedInvalidAudioURL   MessageKey = "scannedInvalidAudioUrl"
	MessageCatalogReferenceDetected MessageKey = "catalogReferenceDetected"
	MessageURLDetected              MessageKey = "urlDetected"
	MessageValidating               MessageKey = "validating"
	MessageInvalidAudio             MessageKey = "invalidAudio"
	MessageErrorLoading             MessageKey = "errorLoading"
	MessageEnterURL                 MessageKey = "enterUrl"
	MessageInvalidURLFormat         MessageKey = "invalidUrlFormat"
	MessageHTTPSOnly                MessageKey = "httpsOnly"
	MessageCatalogOnly              MessageKey = "catalogOnly"
	MessageLoadingFromURL           MessageKey = "loadingFromUrl"
	MessageCameraNotSupported       MessageKey = "cameraNotSupported"
	MessageCameraNotFound           MessageKey = "cameraNotFound"
	MessageCameraPermissionDenied   MessageKey = "cameraPermissionDenied"
	MessageCameraError              MessageKey = "cameraError"
)

// ParamData carries the raw scanned text.
const ParamData = "data"

// MessageKeys lists every non-empty key.
func MessageKeys() []MessageKey {
	return []MessageKey{
		MessageScannedInvalidURL,
		MessageScannedInvalidAudioURL,
		MessageCatalogReferenceDetected,
		MessageURLDetected,
		MessageValidating,
		MessageInvalidAudio,
		MessageErrorLoading,
		MessageEnterURL,
		MessageInvalidURLFormat,
		MessageHTTPSOnly,
		MessageCatalogOnly,
		MessageLoadingFromURL,
		MessageCameraNotSupported,
		MessageCameraNotFound,
		MessageCameraPermissionDenied,
		MessageCameraError,
	}
}

func rejectionMessage(r scan.Rejection) MessageKey {
	switch r {
	case scan.RejectEmpty:
		return MessageEnterURL
	case scan.RejectFormat:
		return MessageInvalidURLFormat
	case scan.RejectScheme:
		return MessageHTTPSOnly
	case scan.RejectCatalogOnly:
		return MessageCatalogOnly
	default:
		return MessageNone
	}
}

func cameraMessage(k CameraError) MessageKey {
	switch k {
	case CameraNotAllowed:
		return MessageCameraPermissionDenied
	case CameraNotFound:
		return MessageCameraNotFound
	case CameraNotSupported:
		return MessageCameraNotSupported
	default:
		return MessageCameraError
	}
}
