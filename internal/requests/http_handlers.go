package requests

import (
	"emsbot/internal/common"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

func getCreateRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := r.Context().Value(common.HttpContextLogger).(common.HttpRequestLogger)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to read request body", err)
			return
		}

		var submission Submission
		if err := json.Unmarshal(body, &submission); err != nil {
			common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to parse request body", err)
			return
		}

		record, err := httpWorkflow.Submit(submission)
		if err != nil {
			if validationError, ok := AsValidationError(err); ok {
				common.SendHttpFailResponse(w, r, http.StatusBadRequest, "submission failed validation", validationError)
				return
			}
			if errors.Is(err, ErrUnroutedNotification) {
				// the record exists and is decidable, only the chat
				// notification could not be routed
				log(common.LogLevelWarn, fmt.Sprintf("request[%s] was created without a notification", record.Id))
				common.SendHttpSuccessResponse(w, r, http.StatusCreated, "created without a notification channel", record)
				return
			}
			common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to create the request", err)
			return
		}

		log(common.LogLevelInfo, fmt.Sprintf("created request[%s]", record.Id))
		common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", record)
	}
}

func getListRequestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := r.Context().Value(common.HttpContextLogger).(common.HttpRequestLogger)

		requestIds, err := ListRecordIds()
		if err != nil {
			common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to list requests", err)
			return
		}

		records := make([]Record, 0, len(requestIds))
		for _, requestId := range requestIds {
			record, err := LoadRecord(requestId)
			if err != nil {
				// a ledger entry that fails to load shouldn't hide the
				// rest of the listing
				log(common.LogLevelWarn, fmt.Sprintf("skipping request[%s]: %s", requestId, err))
				continue
			}
			records = append(records, *record)
		}

		common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", records)
	}
}

func getGetRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := mux.Vars(r)["requestId"]

		// prefer the live entry, it is what decisions resolve against
		if entry, ok := httpWorkflow.Get(requestId); ok {
			common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", entry.Snapshot())
			return
		}

		record, err := LoadRecord(requestId)
		if err != nil {
			common.SendHttpFailResponse(w, r, http.StatusNotFound, "request not found", fmt.Errorf("request[%s] not found", requestId))
			return
		}
		common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", *record)
	}
}
