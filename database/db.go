package database

import (
	"context"
	"fmt"
	"time"

	"pgmanager/config"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoClient is the global MongoDB client instance.
var MongoClient *mongo.Client

// transactionsSupported is set by InitDB from the server's hello reply.
var transactionsSupported bool

type helloReply struct {
	SetName string `bson:"setName"`
	Msg     string `bson:"msg"`
}

// supportsTransactions is true for replica set members and mongos routers.
// A standalone mongod rejects multi-document transactions.
func (h helloReply) supportsTransactions() bool {
	return h.SetName != "" || h.Msg == "isdbgrid"
}

// InitDB initializes the MongoDB connection.
func InitDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.AppConfig.DatabaseURL)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	MongoClient = client

	var hello helloReply
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		utils.GetLogger().Warn("could not detect MongoDB topology", zap.Error(err))
	} else {
		transactionsSupported = hello.supportsTransactions()
	}
	utils.GetLogger().Info("Connected to MongoDB successfully",
		zap.String("database", config.AppConfig.DatabaseName),
		zap.String("replicaSet", hello.SetName),
		zap.Bool("transactions", transactionsSupported))
	return nil
}

// DB returns the configured application database.
func DB() *mongo.Database {
	return MongoClient.Database(config.AppConfig.DatabaseName)
}

// Close disconnects the global client.
func Close(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	return MongoClient.Disconnect(ctx)
}

// NewUnitOfWork uses server transactions when MONGO_TRANSACTIONS is on and the
// connected topology supports them, and compensation otherwise.
func NewUnitOfWork() UnitOfWork {
	return chooseUnitOfWork(config.AppConfig.MongoTransactions, transactionsSupported, MongoClient)
}

func chooseUnitOfWork(enabled, supported bool, client *mongo.Client) UnitOfWork {
	switch {
	case enabled && supported:
		return NewMongoUnitOfWork(client)
	case enabled:
		utils.GetLogger().Warn("MongoDB is a standalone server, multi-document writes use compensation instead of transactions")
	default:
		utils.GetLogger().Warn("MongoDB transactions disabled, multi-document writes use compensation")
	}
	return NewSagaUnitOfWork()
}
