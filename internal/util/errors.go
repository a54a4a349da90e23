package util

import "errors"

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrSessionNotFound  = errors.New("sesi tidak ditemukan")
	ErrSessionLoading   = errors.New("pertanyaan masih dimuat")
	ErrSchemaLoadFailed = errors.New("gagal memuat pertanyaan")
	ErrSubmitInProgress = errors.New("jawaban sedang dikirim")
	ErrSubmitFailed     = errors.New("gagal mengirim jawaban, silakan coba lagi")
	ErrHistoryFailed    = errors.New("gagal memuat riwayat jawaban")
)
