package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/exvulsec/safeguard/config"
	"github.com/exvulsec/safeguard/guard"
	"github.com/exvulsec/safeguard/model"
)

type GuardController struct {
	Pipeline *guard.Pipeline
}

func (gc *GuardController) Routers(routers gin.IRouter) {
	api := routers.Group("/safes")
	{
		api.GET("/:address/transactions/:safe_tx_hash/verify", gc.Verify)
		api.GET("/:address/conclusions", gc.Conclusions)
	}
}

// Verify runs the guard pipeline for one queued transaction and returns the
// conclusion. It never signs, rejects or notifies.
func (gc *GuardController) Verify(c *gin.Context) {
	safeAddress := c.Param("address")
	safeTxHash := strings.ToLower(c.Param("safe_tx_hash"))
	if !common.IsHexAddress(safeAddress) {
		c.JSON(http.StatusOK, model.Message{Code: http.StatusBadRequest, Msg: fmt.Sprintf("invalid safe address %s", safeAddress)})
		return
	}

	conclusion, err := gc.Pipeline.Run(c, safeAddress, safeTxHash)
	if err != nil {
		c.JSON(http.StatusOK, model.Message{Code: http.StatusInternalServerError, Msg: fmt.Sprintf("verify tx %s is err %v", safeTxHash, err)})
		return
	}
	c.JSON(http.StatusOK, model.Message{Code: http.StatusOK, Data: conclusion})
}

// Conclusions lists the persisted audit records for a safe.
func (gc *GuardController) Conclusions(c *gin.Context) {
	safeAddress := c.Param("address")
	if !common.IsHexAddress(safeAddress) {
		c.JSON(http.StatusOK, model.Message{Code: http.StatusBadRequest, Msg: fmt.Sprintf("invalid safe address %s", safeAddress)})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	conclusions := model.GuardConclusions{}
	if err := conclusions.List(config.Conf.Chain.Name, strings.ToLower(safeAddress), limit); err != nil {
		c.JSON(http.StatusOK, model.Message{Code: http.StatusInternalServerError, Msg: fmt.Sprintf("list conclusions for %s is err %v", safeAddress, err)})
		return
	}
	c.JSON(http.StatusOK, model.Message{Code: http.StatusOK, Data: conclusions})
}
