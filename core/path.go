package core

const (
	// RootLinkKey is the storage key holding the current root link.
	RootLinkKey = "root"
	// RootSchemaFieldName is the name of the schema field on a root.
	RootSchemaFieldName = "Schema"
	// RootCollectionsFieldName is the name of the collections field on a root.
	RootCollectionsFieldName = "Collections"
	// CollectionDocumentsFieldName is the name of the documents field on a collection.
	CollectionDocumentsFieldName = "Documents"
)
