package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListBankCodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"banks": s.directory.Entries()})
}
