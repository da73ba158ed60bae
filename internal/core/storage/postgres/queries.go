package postgres

// SQL for dimension resolution, fact appends and the analytics read path.
//
// Dimension inserts use ON CONFLICT DO NOTHING RETURNING id: the statement
// returns no row when the business key already exists (including when a
// concurrent transaction won the insert race), and the caller falls back to a
// SELECT by business key. This closes the lookup-then-create race at the
// storage level without ever updating attributes of an existing row.

const (
	queryInsertCategory = `
		INSERT INTO categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`

	querySelectCategory = `
		SELECT id FROM categories WHERE name = $1
	`

	queryInsertRegion = `
		INSERT INTO regions (name)
		VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`

	querySelectRegion = `
		SELECT id FROM regions WHERE name = $1
	`

	queryInsertCustomer = `
		INSERT INTO customers (customer_id, name, email, address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (customer_id) DO NOTHING
		RETURNING id
	`

	querySelectCustomer = `
		SELECT id FROM customers WHERE customer_id = $1
	`

	queryInsertProduct = `
		INSERT INTO products (product_id, name, unit_price, category_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id) DO NOTHING
		RETURNING id
	`

	querySelectProduct = `
		SELECT id FROM products WHERE product_id = $1
	`

	// Record scope for best-effort ingestion. A failed INSERT aborts the
	// whole postgres transaction, so each record runs inside a savepoint that
	// can be rolled back without losing the batch.
	querySavepointRecord        = `SAVEPOINT ingest_record`
	queryReleaseSavepointRecord = `RELEASE SAVEPOINT ingest_record`
	queryRollbackToRecord       = `ROLLBACK TO SAVEPOINT ingest_record`

	// queryInsertOrder appends one fact row. There is deliberately no conflict
	// target: order_id carries no uniqueness constraint.
	queryInsertOrder = `
		INSERT INTO orders (
			order_id, customer_id, product_id, region_id,
			date_of_sale, quantity_sold, discount, shipping_cost, payment_method
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
)

// Read-path queries. Revenue is always quantity_sold * the product's stored
// unit price, so every revenue query joins products explicitly. Grouped
// results are ordered ascending by group name and top products break quantity
// ties by product name, so results are reproducible across runs.
const (
	queryTotalRevenue = `
		SELECT COALESCE(SUM(o.quantity_sold * p.unit_price), 0)
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.date_of_sale BETWEEN $1 AND $2
	`

	queryRevenueByProduct = `
		SELECT p.name, SUM(o.quantity_sold * p.unit_price) AS revenue
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.date_of_sale BETWEEN $1 AND $2
		GROUP BY p.name
		ORDER BY p.name ASC
	`

	queryRevenueByCategory = `
		SELECT c.name, SUM(o.quantity_sold * p.unit_price) AS revenue
		FROM orders o
		JOIN products p ON p.id = o.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE o.date_of_sale BETWEEN $1 AND $2
		GROUP BY c.name
		ORDER BY c.name ASC
	`

	queryRevenueByRegion = `
		SELECT r.name, SUM(o.quantity_sold * p.unit_price) AS revenue
		FROM orders o
		JOIN products p ON p.id = o.product_id
		JOIN regions r ON r.id = o.region_id
		WHERE o.date_of_sale BETWEEN $1 AND $2
		GROUP BY r.name
		ORDER BY r.name ASC
	`

	// Empty-string filter arguments disable the corresponding predicate, which
	// keeps the statement constant and preparable.
	queryTopProducts = `
		SELECT p.name, SUM(o.quantity_sold) AS total_quantity
		FROM orders o
		JOIN products p ON p.id = o.product_id
		JOIN categories c ON c.id = p.category_id
		JOIN regions r ON r.id = o.region_id
		WHERE o.date_of_sale BETWEEN $1 AND $2
		  AND ($3 = '' OR c.name = $3)
		  AND ($4 = '' OR r.name = $4)
		GROUP BY p.name
		ORDER BY total_quantity DESC, p.name ASC
		LIMIT $5
	`

	queryDistinctCustomerCount = `
		SELECT COUNT(DISTINCT customer_id)
		FROM orders
		WHERE date_of_sale BETWEEN $1 AND $2
	`

	queryOrderCount = `
		SELECT COUNT(*)
		FROM orders
		WHERE date_of_sale BETWEEN $1 AND $2
	`

	queryAverageOrderValue = `
		SELECT COALESCE(AVG(o.quantity_sold * p.unit_price), 0)
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.date_of_sale BETWEEN $1 AND $2
	`
)

// Order-management queries.
const (
	querySelectOrder = `
		SELECT id, order_id, customer_id, product_id, region_id,
		       date_of_sale, quantity_sold, discount, shipping_cost, payment_method
		FROM orders
		WHERE id = $1
	`

	queryListOrders = `
		SELECT id, order_id, customer_id, product_id, region_id,
		       date_of_sale, quantity_sold, discount, shipping_cost, payment_method
		FROM orders
		ORDER BY id ASC
	`
)
