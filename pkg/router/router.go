package router

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonlotto/backend/pkg/xcontext"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// Router binds handlers written against context.Context onto gin. The root
// context given to New carries the database, configs, logger, and id
// generator; every request handler runs under a child of it.
type Router struct {
	Inner gin.IRouter

	ctx context.Context
}

func New(ctx context.Context) *Router {
	return &Router{Inner: gin.New(), ctx: ctx}
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Group(pattern string) *Router {
	return &Router{Inner: r.Inner.Group(pattern), ctx: r.ctx}
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		var req Request
		var err error
		switch method {
		case http.MethodGet:
			err = ginCtx.ShouldBindQuery(&req)
		default:
			err = ginCtx.ShouldBindJSON(&req)
			if errors.Is(err, io.EOF) {
				// Requests without a body bind to the zero request.
				err = nil
			}
		}
		if err != nil {
			ginCtx.JSON(http.StatusBadRequest, newErrorResponse(err))
			return
		}

		ctx := router.ctx
		if userID := ginCtx.GetHeader("X-User-Id"); userID != "" {
			ctx = xcontext.WithRequestUserID(ctx, userID)
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			xcontext.Logger(ctx).Warnf("%s %s failed: %v", method, ginCtx.FullPath(), err)
			ginCtx.JSON(http.StatusOK, newErrorResponse(err))
			return
		}

		ginCtx.JSON(http.StatusOK, newResponse(resp))
	}
}
