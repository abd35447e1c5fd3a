package database

import (
	"time"

	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
	"github.com/imyashkale/shutdownmanager/internal/models"
)

// applicationItem is the stored shape of an application, shared by the
// DynamoDB (attribute values) and Badger (JSON) backends
type applicationItem struct {
	Id               string `dynamodbav:"Id" json:"id"`
	Name             string `dynamodbav:"Name" json:"name"`
	Owner            string `dynamodbav:"Owner" json:"owner"`
	WebUI            string `dynamodbav:"WebUI" json:"web_ui"`
	DBPort           *int   `dynamodbav:"DBPort,omitempty" json:"db_port,omitempty"`
	Status           string `dynamodbav:"Status" json:"status"`
	ShutdownVerified bool   `dynamodbav:"ShutdownVerified" json:"shutdown_verified"`
	CreatedAt        int64  `dynamodbav:"CreatedAt" json:"created_at"` // unix millis
	UpdatedAt        int64  `dynamodbav:"UpdatedAt" json:"updated_at"`
}

type serverItem struct {
	Id         string  `dynamodbav:"Id" json:"id"`
	Hostname   string  `dynamodbav:"Hostname" json:"hostname"`
	IPAddress  string  `dynamodbav:"IPAddress" json:"ip_address"`
	AppId      *string `dynamodbav:"AppId,omitempty" json:"app_id,omitempty"`
	Status     string  `dynamodbav:"Status" json:"status"`
	PingStatus bool    `dynamodbav:"PingStatus" json:"ping_status"`
	CreatedAt  int64   `dynamodbav:"CreatedAt" json:"created_at"`
	UpdatedAt  int64   `dynamodbav:"UpdatedAt" json:"updated_at"`
}

func toApplicationItem(app *models.Application) applicationItem {
	return applicationItem{
		Id:               app.Id,
		Name:             app.Name,
		Owner:            app.Owner,
		WebUI:            app.WebUI,
		DBPort:           app.DBPort,
		Status:           string(app.Status),
		ShutdownVerified: app.ShutdownVerified,
		CreatedAt:        app.CreatedAt.UnixMilli(),
		UpdatedAt:        app.UpdatedAt.UnixMilli(),
	}
}

func (it applicationItem) toDomain() *models.Application {
	app := &models.Application{
		Id:        it.Id,
		Name:      it.Name,
		Owner:     it.Owner,
		WebUI:     it.WebUI,
		DBPort:    it.DBPort,
		CreatedAt: time.UnixMilli(it.CreatedAt),
		UpdatedAt: time.UnixMilli(it.UpdatedAt),
	}
	status := lifecycle.Status(it.Status)
	if !status.Valid() {
		status = lifecycle.Initial
	}
	app.SetStatus(status)
	return app
}

func toServerItem(srv *models.Server) serverItem {
	return serverItem{
		Id:         srv.Id,
		Hostname:   srv.Hostname,
		IPAddress:  srv.IPAddress,
		AppId:      srv.AppId,
		Status:     string(srv.Status),
		PingStatus: srv.PingStatus,
		CreatedAt:  srv.CreatedAt.UnixMilli(),
		UpdatedAt:  srv.UpdatedAt.UnixMilli(),
	}
}

func (it serverItem) toDomain() *models.Server {
	status := lifecycle.Status(it.Status)
	if !status.Valid() {
		status = lifecycle.Initial
	}
	return &models.Server{
		Id:         it.Id,
		Hostname:   it.Hostname,
		IPAddress:  it.IPAddress,
		AppId:      it.AppId,
		Status:     status,
		PingStatus: it.PingStatus,
		CreatedAt:  time.UnixMilli(it.CreatedAt),
		UpdatedAt:  time.UnixMilli(it.UpdatedAt),
	}
}
