package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/nicolagi/postd/post"
	"github.com/nicolagi/postd/storage"
	log "github.com/sirupsen/logrus"
)

// Version is the API version reported by GET /version.
const Version = "1.0"

const (
	msgCreated  = "Пост успішно створений"
	msgUpdated  = "Пост успішно оновлений"
	msgDeleted  = "Пост успішно видалений"
	msgNotFound = "Пост не знайдений"
)

type versionResponse struct {
	Version string `json:"version"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createdResponse struct {
	Message string `json:"message"`
	PostID  int64  `json:"post_id"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) version(*http.Request, *log.Entry) (int, interface{}) {
	return http.StatusOK, versionResponse{Version: Version}
}

func (s *Server) createPost(r *http.Request, logger *log.Entry) (int, interface{}) {
	p, err := post.Parse(r.Body)
	if err != nil {
		return errorResponse(logger, err)
	}
	id, err := s.opts.store.Create(p)
	if err != nil {
		return errorResponse(logger, err)
	}
	logger.WithFields(log.Fields{
		"id":   id,
		"post": p,
	}).Info("Post created")
	return http.StatusOK, createdResponse{Message: msgCreated, PostID: id}
}

func (s *Server) getPost(r *http.Request, logger *log.Entry) (int, interface{}) {
	id, err := postID(r)
	if err != nil {
		return errorResponse(logger, err)
	}
	p, err := s.opts.store.Get(id)
	if err != nil {
		return errorResponse(logger, err)
	}
	return http.StatusOK, p
}

func (s *Server) updatePost(r *http.Request, logger *log.Entry) (int, interface{}) {
	id, err := postID(r)
	if err != nil {
		return errorResponse(logger, err)
	}
	p, err := post.Parse(r.Body)
	if err != nil {
		return errorResponse(logger, err)
	}
	if err := s.opts.store.Update(id, p); err != nil {
		return errorResponse(logger, err)
	}
	logger.WithFields(log.Fields{
		"id":   id,
		"post": p,
	}).Info("Post updated")
	return http.StatusOK, messageResponse{Message: msgUpdated}
}

func (s *Server) deletePost(r *http.Request, logger *log.Entry) (int, interface{}) {
	id, err := postID(r)
	if err != nil {
		return errorResponse(logger, err)
	}
	if err := s.opts.store.Delete(id); err != nil {
		return errorResponse(logger, err)
	}
	logger.WithField("id", id).Info("Post deleted")
	return http.StatusOK, messageResponse{Message: msgDeleted}
}

func (s *Server) stats(*http.Request, *log.Entry) (int, interface{}) {
	return http.StatusOK, s.Stats()
}

func postID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("post_id"), 10, 64)
	if err != nil {
		return 0, &post.ValidationError{Field: "post_id", Reason: "must be an integer"}
	}
	return id, nil
}

func errorResponse(logger *log.Entry, err error) (int, interface{}) {
	var verr *post.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.WithField("err", err).Debug("Invalid request")
		return http.StatusUnprocessableEntity, detailResponse{Detail: verr.Error()}
	case errors.Is(err, storage.ErrNotFound):
		logger.WithField("err", err).Debug("Not found")
		return http.StatusNotFound, detailResponse{Detail: msgNotFound}
	default:
		logger.WithField("err", err).Error("Could not serve request")
		return http.StatusInternalServerError, detailResponse{Detail: http.StatusText(http.StatusInternalServerError)}
	}
}
