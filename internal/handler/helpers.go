package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecotrade/internal/pkg/auth/jwt"
	"ecotrade/internal/pkg/errs"
)

// identity resolves the authenticated caller from the request context.
// A nil error guarantees a valid payload and a parsed object id.
func identity(r *http.Request) (*jwt.Payload, primitive.ObjectID, *errs.CustomError) {
	payload := jwt.GetPayloadFromContext(r)
	if payload == nil {
		return nil, primitive.NilObjectID, errs.NewError(errs.ErrUnauthorized)
	}

	oid, err := primitive.ObjectIDFromHex(payload.ID)
	if err != nil {
		return nil, primitive.NilObjectID, errs.NewError(errs.ErrUnauthorized)
	}

	return payload, oid, nil
}

// pathObjectID parses a chi URL parameter as a Mongo object id.
func pathObjectID(r *http.Request, name string) (primitive.ObjectID, *errs.CustomError) {
	raw := chi.URLParam(r, name)
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, errs.NewError(errs.ErrInvalidParams)
	}
	return oid, nil
}
