package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "icarus_session"

// DemoUserName is the account created by the optional demo seeding.
const DemoUserName = "testuser"

// DemoProjectName is the sample project given to the seeded demo account.
const DemoProjectName = "Kurumsal Web Sitesi"
