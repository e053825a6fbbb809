package database

import (
	"log"

	"taller-backend/internal/config"
	"taller-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("No se pudo conectar a la base de datos: %v", err)
	}

	// Migración manual: versiones anteriores guardaban el teléfono y el correo
	// del cliente como NOT NULL con cadena vacía, lo que choca con los índices
	// únicos por empresa. Se pasan a NULL antes del AutoMigrate.
	if DB.Migrator().HasTable(&models.Cliente{}) {
		if err := DB.Exec("UPDATE clientes SET telefono = NULL WHERE telefono = ''").Error; err != nil {
			log.Printf("No se pudieron normalizar teléfonos vacíos (puede que ya estén en NULL): %v", err)
		}
		if err := DB.Exec("UPDATE clientes SET correo = NULL WHERE correo = ''").Error; err != nil {
			log.Printf("No se pudieron normalizar correos vacíos (puede que ya estén en NULL): %v", err)
		}
	}

	err = DB.AutoMigrate(
		&models.Empresa{},
		&models.Usuario{},
		&models.Cliente{},
		&models.Proveedor{},
		&models.Marca{},
		&models.Producto{},
		&models.Compra{},
		&models.CompraDetalle{},
		&models.MovimientoProveedor{},
		&models.Venta{},
		&models.VentaDetalle{},
		&models.Servicio{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("Error en AutoMigrate: %v", err)
	}

	// AutoMigrate a veces no crea la foreign key del movimiento hacia la
	// compra; se asegura a mano para que el ledger no quede huérfano.
	if DB.Migrator().HasTable(&models.MovimientoProveedor{}) && DB.Migrator().HasTable(&models.Compra{}) {
		var constraintExists bool
		DB.Raw(`
			SELECT EXISTS (
				SELECT 1
				FROM information_schema.table_constraints
				WHERE table_name = 'movimientos_proveedor'
				AND constraint_name = 'fk_movimientos_proveedor_compra'
			)
		`).Scan(&constraintExists)

		if !constraintExists {
			if fkErr := DB.Exec(`
				ALTER TABLE movimientos_proveedor
				ADD CONSTRAINT fk_movimientos_proveedor_compra
				FOREIGN KEY (compra_id) REFERENCES compras(id) ON DELETE RESTRICT
			`).Error; fkErr != nil {
				log.Printf("No se pudo agregar la foreign key del movimiento a la compra: %v", fkErr)
			} else {
				log.Println("Foreign key movimientos_proveedor -> compras agregada")
			}
		}
	}

	log.Println("Conexión a la base de datos lista. Migración completada.")
}
