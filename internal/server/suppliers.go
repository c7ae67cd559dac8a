package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	supplierdomain "github.com/smallbiznis/clearwire/internal/supplier/domain"
)

func (s *Server) ListSuppliers(c *gin.Context) {
	resp, err := s.supplierSvc.List(c.Request.Context(), supplierdomain.ListSupplierRequest{
		Name: c.Query("name"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetSupplier(c *gin.Context) {
	supplier, err := s.supplierSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}
