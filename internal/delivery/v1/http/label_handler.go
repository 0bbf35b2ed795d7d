package http

import (
	"net/http"
	"strconv"

	"github.com/skladtech/inventory-backend/internal/usecase"
	"github.com/skladtech/inventory-backend/pkg/logger"
)

type LabelHandler struct {
	labelUsecase usecase.LabelUC
	logger       logger.Logger
}

func NewLabelHandler(labelUsecase usecase.LabelUC, logger logger.Logger) *LabelHandler {
	return &LabelHandler{labelUsecase: labelUsecase, logger: logger}
}

func (l *LabelHandler) generateLabel(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := l.labelUsecase.GenerateLabel(r.Context(), id)
	if err != nil {
		l.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"ProductID": res.ProductID,
		"ObjectKey": res.ObjectKey,
	})
}

func (l *LabelHandler) getLabel(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	content, err := l.labelUsecase.GetLabel(r.Context(), id)
	if err != nil {
		l.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", content.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(content.Data)
}
