package qrcode

import (
	"fmt"
	"strings"

	"github.com/eleven-freight/internal/logger"

	goqr "github.com/skip2/go-qrcode"
)

var probePayload = []byte(`{"id":0,"receipt_number":"PROBE"}`)

// Select 启动时按模式探测一次可用后端
// auto 依次尝试矢量与位图后端；全部失败时返回 ErrEncodingUnavailable。
func Select(mode string, level goqr.RecoveryLevel) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeAuto:
		return SelectFrom(NewVectorBackend(level), NewRasterBackend(level))
	case ModeVector:
		return SelectFrom(NewVectorBackend(level))
	case ModeRaster:
		return SelectFrom(NewRasterBackend(level))
	default:
		return nil, fmt.Errorf("unknown qr backend mode %q", mode)
	}
}

// SelectFrom 返回第一个能完成探测编码的后端
func SelectFrom(candidates ...Backend) (Backend, error) {
	log := logger.Named("qrcode")
	for _, backend := range candidates {
		if backend == nil {
			continue
		}
		artifact, err := backend.Encode(probePayload, defaultSize)
		if err != nil || artifact == nil || len(artifact.Data) == 0 || artifact.Image == nil {
			log.Warnw("qr_backend_probe_failed", "backend", backend.Name(), "error", err)
			continue
		}
		log.Infow("qr_backend_selected", "backend", backend.Name())
		return backend, nil
	}
	return nil, ErrEncodingUnavailable
}
