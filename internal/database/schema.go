package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL statements in dependency order.  Every statement is
// idempotent so EnsureSchema can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS numeros (
		id INT AUTO_INCREMENT PRIMARY KEY,
		numero INT NOT NULL UNIQUE,
		vendido BOOLEAN NOT NULL DEFAULT FALSE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS compradores (
		id INT AUTO_INCREMENT PRIMARY KEY,
		numero_id INT NOT NULL UNIQUE,
		numero_documento VARCHAR(50) NOT NULL,
		nombres VARCHAR(100) NOT NULL,
		apellidos VARCHAR(100) NOT NULL,
		telefono VARCHAR(30) NOT NULL,
		correo VARCHAR(150) NOT NULL,
		pagado BOOLEAN NOT NULL DEFAULT FALSE,
		fecha_compra DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		fecha_pago DATETIME NULL,
		CONSTRAINT fk_compradores_numero FOREIGN KEY (numero_id) REFERENCES numeros(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS config_rifa (
		id INT PRIMARY KEY,
		fecha_rifa DATE NULL,
		loteria VARCHAR(100) NULL,
		valor_rifa DECIMAL(12,2) NULL,
		premio VARCHAR(500) NULL,
		medio_pago VARCHAR(255) NULL,
		responsable VARCHAR(100) NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`INSERT IGNORE INTO config_rifa (id) VALUES (1)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		session_token VARCHAR(255) NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_sessions_user (user_id),
		CONSTRAINT fk_sessions_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates missing tables and seeds the configuration row.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
