package daemon

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GEROGIANNIS/GrubPower/pkg/config"
	"github.com/GEROGIANNIS/GrubPower/pkg/version"
)

func getStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, mon.Status())
}

func getBattery(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, mon.Status().Battery)
}

func getLid(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, mon.Status().Lid)
}

func getUSBDevices(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, mon.USB().Devices())
}

func getConfig(c *gin.Context) {
	values := map[string]string{}
	for _, key := range config.Keys() {
		if v, err := conf.Get(key); err == nil {
			values[key] = v
		}
	}
	c.IndentedJSON(http.StatusOK, values)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
