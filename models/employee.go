package models

import "time"

type Employee struct {
	ID         string    `json:"id" bson:"_id" yaml:"id"`
	Name       string    `json:"name" bson:"name" yaml:"name"`
	Role       string    `json:"role" bson:"role" yaml:"role"`
	Department string    `json:"department" bson:"department" yaml:"department"`
	Manager    string    `json:"manager" bson:"manager" yaml:"manager"`
	HiredAt    time.Time `json:"hired_at" bson:"hired_at" yaml:"hired_at"`
}
