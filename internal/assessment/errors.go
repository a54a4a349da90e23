package assessment

import "errors"

var (
	ErrMissingAssessmentID = errors.New("assessment_id tidak ditemukan")
	ErrReadOnlyCategory    = errors.New("kategori ini hanya untuk riwayat")
	ErrUnknownCategory     = errors.New("kategori asesmen tidak dikenal")
	ErrUnknownAnswerType   = errors.New("tipe jawaban tidak dikenal")
	ErrUnsupportedEvent    = errors.New("aksi tidak didukung untuk tipe jawaban ini")
	ErrInvalidInput        = errors.New("input tidak valid")
	ErrOutOfRange          = errors.New("nilai di luar rentang")
	ErrQuestionNotFound    = errors.New("pertanyaan tidak ditemukan")
	ErrQuestionHidden      = errors.New("pertanyaan sedang disembunyikan")
	ErrNoteNotAllowed      = errors.New("catatan hanya untuk jawaban negatif")
	ErrUnknownField        = errors.New("field tidak dikenal")
)
