package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrPermissionDenied  ErrCode = "PERMISSION_DENIED"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam setup ────────────────────────────────────────────────────
	ErrExamNotFound          ErrCode = "EXAM_NOT_FOUND"
	ErrNoQuestions           ErrCode = "NO_QUESTIONS"
	ErrScoreExceedsMax       ErrCode = "SCORE_EXCEEDS_MAX"
	ErrDuplicateQuestion     ErrCode = "DUPLICATE_QUESTION"
	ErrUnknownQuestion       ErrCode = "UNKNOWN_QUESTION"
	ErrInvalidVariantCount   ErrCode = "INVALID_EXAM_CODE_COUNT"
	ErrInvalidAssignmentKind ErrCode = "INVALID_ASSIGNMENT_KIND"
	ErrInvalidWindow         ErrCode = "INVALID_WINDOW"
	ErrAssignmentExists      ErrCode = "ASSIGNMENT_EXISTS"
	ErrAssignmentNotFound    ErrCode = "ASSIGNMENT_NOT_FOUND"
	ErrGroupNotFound         ErrCode = "GROUP_NOT_FOUND"

	// ─── Exam session ──────────────────────────────────────────────────
	ErrExamNotOpen       ErrCode = "EXAM_NOT_OPEN"
	ErrExamClosed        ErrCode = "EXAM_CLOSED"
	ErrAlreadyAttempted  ErrCode = "ALREADY_ATTEMPTED"
	ErrAlreadySubmitted  ErrCode = "ALREADY_SUBMITTED"
	ErrAttemptNotFound   ErrCode = "ATTEMPT_NOT_FOUND"
	ErrUnknownWSAction   ErrCode = "UNKNOWN_ACTION"
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Anda tidak memiliki izin untuk mengakses sumber daya ini."
	case ErrPermissionDenied:
		return "Izin ditolak."
	case ErrStudentAccessOnly:
		return "Sumber daya ini terbatas untuk siswa."
	case ErrAdminAccessOnly:
		return "Sumber daya ini terbatas untuk administrator."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."

	// ─── Exam setup ────────────────────────────────────────────────────
	case ErrExamNotFound:
		return "Ujian tidak ditemukan."
	case ErrNoQuestions:
		return "Ujian ini tidak memiliki pertanyaan."
	case ErrScoreExceedsMax:
		return "Total skor pertanyaan melebihi skor maksimal ujian."
	case ErrDuplicateQuestion:
		return "Pertanyaan yang sama dicantumkan lebih dari sekali."
	case ErrUnknownQuestion:
		return "Pertanyaan tidak ditemukan."
	case ErrInvalidVariantCount:
		return "Jumlah kode ujian di luar batas yang diizinkan."
	case ErrInvalidAssignmentKind:
		return "Jenis penugasan harus class atau room."
	case ErrInvalidWindow:
		return "Waktu mulai harus sebelum waktu selesai."
	case ErrAssignmentExists:
		return "Ujian ini sudah ditugaskan ke kelompok tersebut."
	case ErrAssignmentNotFound:
		return "Penugasan ujian tidak ditemukan."
	case ErrGroupNotFound:
		return "Kelas atau ruangan tidak ditemukan."

	// ─── Exam session ──────────────────────────────────────────────────
	case ErrExamNotOpen:
		return "Ujian belum dibuka."
	case ErrExamClosed:
		return "Ujian sudah ditutup."
	case ErrAlreadyAttempted:
		return "Anda sudah mengerjakan ujian ini."
	case ErrAlreadySubmitted:
		return "Jawaban ujian ini sudah dikumpulkan."
	case ErrAttemptNotFound:
		return "Anda belum memulai ujian ini."
	case ErrUnknownWSAction:
		return "Aksi tidak dikenal."
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
