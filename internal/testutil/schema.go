package testutil

// HRSchema is a trimmed HR data model covering every physical field the
// semantic map points at.
const HRSchema = `
// HR platform data model
enum AttendanceStatus {
  PRESENT
  ABSENT
  LATE
}

enum LeaveType { ANNUAL SICK UNPAID }

model User {
  id           String   @id @default(uuid())
  companyId    String   @map("company_id")
  email        String   @unique @map("user_email")
  firstName    String
  jobTitle     String?
  nationality  String?
  departmentId String?
  branchId     String?
  createdAt    DateTime @default(now())
  department   Department? @relation(fields: [departmentId], references: [id])
  contracts    Contract[]
  attendances  Attendance[]
  @@map("users")
}

model Department {
  id        String @id
  companyId String
  name      String
  users     User[]
  @@map("departments")
}

model Contract {
  id          String  @id
  companyId   String
  userId      String
  isProbation Boolean @default(false)
  basicSalary Decimal
  totalSalary Decimal
  user        User    @relation(fields: [userId], references: [id])
  @@map("contracts")
}

model Attendance {
  id              String           @id
  companyId       String
  userId          String
  date            DateTime
  checkIn         DateTime?
  checkOut        DateTime?
  status          AttendanceStatus
  lateMinutes     Int              @default(0)
  overtimeMinutes Int              @default(0)
  workingHours    Float?
  user            User             @relation(fields: [userId], references: [id])
  @@map("attendances")
}

model LeaveRequest {
  id        String    @id
  companyId String
  leaveType LeaveType
  startDate DateTime
  endDate   DateTime
  @@map("leave_requests")
}

model LeaveBalance {
  id        String @id
  companyId String
  balance   Float
  @@map("leave_balances")
}

model CustodyAssignment {
  id        String @id
  companyId String
  status    String
  @@map("custody_assignments")
}

model CustodyReturn {
  id                String    @id
  companyId         String
  returnDate        DateTime?
  conditionOnReturn String
  replacementValue  Decimal?
  @@map("custody_returns")
}

model DisciplinaryCase {
  id        String @id
  companyId String
  status    String
  @@map("disciplinary_cases")
}

model PerformanceReview {
  id        String @id
  companyId String
  rating    Float
  @@map("performance_reviews")
}
`
