package database

type Config struct {
	FileName string `envconfig:"KNC_DB_FILE" default:"knc.db"`
}
