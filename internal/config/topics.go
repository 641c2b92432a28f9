package config

const (
	// TopicUploadCompleted is the NSQ topic announcing a replaced collection.
	TopicUploadCompleted = "rag.upload.completed"

	// TopicQueryCompleted is the NSQ topic announcing an answered query.
	TopicQueryCompleted = "rag.query.completed"
)
